// Package workflow implements the stage transition engine: moving deals
// through the commercial and delivery pipelines and applying the side effects
// each terminal stage carries. Winning a deal derives its delivery
// opportunity; completing a delivery derives its payment instruction. Both
// derivations are idempotent, so replaying a transition never duplicates
// records.
package workflow
