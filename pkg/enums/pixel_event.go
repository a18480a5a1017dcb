package enums

import "fmt"

// PixelEvent is a conversion event name accepted by the server-side forwarder.
type PixelEvent string

const (
	PixelEventPurchase             PixelEvent = "Purchase"
	PixelEventAddToCart            PixelEvent = "AddToCart"
	PixelEventViewContent          PixelEvent = "ViewContent"
	PixelEventInitiateCheckout     PixelEvent = "InitiateCheckout"
	PixelEventCompleteRegistration PixelEvent = "CompleteRegistration"
	PixelEventLead                 PixelEvent = "Lead"
)

var validPixelEvents = []PixelEvent{
	PixelEventPurchase,
	PixelEventAddToCart,
	PixelEventViewContent,
	PixelEventInitiateCheckout,
	PixelEventCompleteRegistration,
	PixelEventLead,
}

// String implements fmt.Stringer.
func (p PixelEvent) String() string {
	return string(p)
}

// IsValid reports whether the value is an allowed PixelEvent.
func (p PixelEvent) IsValid() bool {
	for _, candidate := range validPixelEvents {
		if candidate == p {
			return true
		}
	}
	return false
}

// PixelEvents returns the closed set of allowed events.
func PixelEvents() []PixelEvent {
	events := make([]PixelEvent, len(validPixelEvents))
	copy(events, validPixelEvents)
	return events
}

// ParsePixelEvent converts raw input into a PixelEvent.
func ParsePixelEvent(value string) (PixelEvent, error) {
	for _, candidate := range validPixelEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("event %q is not allowed", value)
}
