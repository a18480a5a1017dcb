package pixel

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/detoxsabeho/orders-backend/pkg/enums"
	pkgerrors "github.com/detoxsabeho/orders-backend/pkg/errors"
)

// UserData carries the match keys for a conversion event. Values may arrive
// raw or already SHA-256 hashed; normalize() hashes whatever is still
// plaintext before anything leaves the process.
type UserData struct {
	Email     string `json:"em,omitempty"`
	Phone     string `json:"ph,omitempty"`
	FirstName string `json:"fn,omitempty"`
}

// Event is one conversion to forward to the Graph API.
type Event struct {
	Name          string         `json:"eventName"`
	Time          int64          `json:"eventTime,omitempty"`
	UserData      UserData       `json:"userData"`
	CustomData    map[string]any `json:"customData,omitempty"`
	TestEventCode string         `json:"testEventCode,omitempty"`
}

// Result is the acknowledgment surfaced to the caller.
type Result struct {
	EventName string `json:"eventName"`
	EventID   string `json:"facebookEventId,omitempty"`
}

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func (u UserData) empty() bool {
	return strings.TrimSpace(u.Email) == "" &&
		strings.TrimSpace(u.Phone) == "" &&
		strings.TrimSpace(u.FirstName) == ""
}

// normalize returns the user data with every populated field hashed.
func (u UserData) normalize() UserData {
	return UserData{
		Email:     hashField(u.Email),
		Phone:     hashField(u.Phone),
		FirstName: hashField(u.FirstName),
	}
}

// hashField lowercases, trims and SHA-256 hashes a match key. Values that
// already look like a digest pass through untouched so pre-hashed clients
// are not double hashed.
func hashField(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return ""
	}
	if hexDigest.MatchString(normalized) {
		return normalized
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func validateEvent(event Event) (enums.PixelEvent, error) {
	name, err := enums.ParsePixelEvent(event.Name)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "event type not allowed").
			WithDetails(map[string]any{"allowed": enums.PixelEvents()})
	}

	if event.UserData.empty() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "at least one of phone, email or name is required")
	}

	if name == enums.PixelEventPurchase {
		value, hasValue := event.CustomData["value"]
		_, hasCurrency := event.CustomData["currency"]
		if !hasValue || !hasCurrency {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "purchase events require value and currency")
		}
		if !isNonNegativeNumber(value) {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "purchase value must be a non-negative number")
		}
	}

	return name, nil
}

func isNonNegativeNumber(value any) bool {
	switch v := value.(type) {
	case float64:
		return v >= 0
	case int:
		return v >= 0
	case int64:
		return v >= 0
	default:
		return false
	}
}
