// Package notifications pushes workflow milestone alerts to an ntfy topic.
// When no topic is configured every call is a no-op, so callers never need to
// guard their notification sends.
package notifications
