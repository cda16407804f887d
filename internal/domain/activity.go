package domain

// Action names emitted by the event simulator.
const (
	ActionLogin       = "login"
	ActionViewProfile = "view_profile"
	ActionAddItem     = "add_item"
	ActionLogout      = "logout"
)

// Actions lists every simulated action in a stable order.
var Actions = []string{ActionLogin, ActionViewProfile, ActionAddItem, ActionLogout}

// ActivityEvent is a fabricated user action, stored and published as-is.
type ActivityEvent struct {
	UserID int    `json:"user_id"`
	Action string `json:"action"`
}
