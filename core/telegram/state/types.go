package state

// State is a step of the conversation. The set is closed; transitions switch over it exhaustively.
type State uint8

const (
	// StateIdle means there is no active conversation with the chat.
	StateIdle State = iota
	StateWaitingName
	StateWaitingAge
	StateWaitingPhone
	StateAdminBroadcastText
	StateAdminBroadcastPhoto
	StateAdminEditDay1
	StateAdminEditDay2
	StateAdminEditAddress
	StateAdminEditDescription
	StateAdminFindUser
)

var stateNames = [...]string{
	StateIdle:                 "idle",
	StateWaitingName:          "waiting_name",
	StateWaitingAge:           "waiting_age",
	StateWaitingPhone:         "waiting_phone",
	StateAdminBroadcastText:   "admin_broadcast_text",
	StateAdminBroadcastPhoto:  "admin_broadcast_photo",
	StateAdminEditDay1:        "admin_edit_day1",
	StateAdminEditDay2:        "admin_edit_day2",
	StateAdminEditAddress:     "admin_edit_address",
	StateAdminEditDescription: "admin_edit_description",
	StateAdminFindUser:        "admin_find_user",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Admin reports whether s belongs to the operator-only branch.
func (s State) Admin() bool {
	return s >= StateAdminBroadcastText && s <= StateAdminFindUser
}

// Draft is a registration being filled in field by field.
type Draft struct {
	Name  string
	Age   int
	Phone string
}

// Session is the conversation progress of one chat.
type Session struct {
	State State
	Draft Draft
}

// Manager stores at most one session per chat.
type Manager interface {
	// Get returns a copy of the chat's session and whether one exists.
	Get(chatID int64) (Session, bool)
	// Put replaces the chat's session. Putting StateIdle removes it.
	Put(chatID int64, s Session)
	// Clear removes the session and reports whether one existed.
	Clear(chatID int64) bool
	// InProgress reports whether the chat has a non-idle session.
	InProgress(chatID int64) bool
	// Len returns the number of live sessions.
	Len() int
	// Lock serialises work on one chat's session until the returned func is called.
	Lock(chatID int64) (unlock func())
}
