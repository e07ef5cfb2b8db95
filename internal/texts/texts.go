// Package texts loads the bot's message catalogue.
package texts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var defaultCatalogue []byte

// User holds messages shown to registrants.
type User struct {
	Welcome           string `yaml:"welcome"`
	Closed            string `yaml:"closed"`
	Blocked           string `yaml:"blocked"`
	NameEmpty         string `yaml:"name_empty"`
	AskAge            string `yaml:"ask_age"`
	AgeNotNumber      string `yaml:"age_not_number"`
	AgeOutOfRange     string `yaml:"age_out_of_range"`
	AskPhone          string `yaml:"ask_phone"`
	PhoneInvalid      string `yaml:"phone_invalid"`
	Confirmed         string `yaml:"confirmed"`
	RegisterAgain     string `yaml:"register_again"`
	StartHint         string `yaml:"start_hint"`
	Cancelled         string `yaml:"cancelled"`
	NothingToCancel   string `yaml:"nothing_to_cancel"`
	UnknownCommand    string `yaml:"unknown_command"`
	RateLimited       string `yaml:"rate_limited"`
	AccessDenied      string `yaml:"access_denied"`
	UnsupportedAction string `yaml:"unsupported_action"`
	Help              string `yaml:"help"`
}

// Admin holds operator-facing messages. They are HTML and placeholders are escaped by callers.
type Admin struct {
	Notify               string `yaml:"notify"`
	Menu                 string `yaml:"menu"`
	Stats                string `yaml:"stats"`
	StatusOpen           string `yaml:"status_open"`
	StatusClosed         string `yaml:"status_closed"`
	UsersTitle           string `yaml:"users_title"`
	UserLine             string `yaml:"user_line"`
	RegsTitle            string `yaml:"regs_title"`
	RegLine              string `yaml:"reg_line"`
	BlockedTitle         string `yaml:"blocked_title"`
	BlockedLine          string `yaml:"blocked_line"`
	EmptyList            string `yaml:"empty_list"`
	Settings             string `yaml:"settings"`
	PromptDay1           string `yaml:"prompt_day1"`
	PromptDay2           string `yaml:"prompt_day2"`
	PromptAddress        string `yaml:"prompt_address"`
	PromptDescription    string `yaml:"prompt_description"`
	FieldUpdated         string `yaml:"field_updated"`
	ActiveToggled        string `yaml:"active_toggled"`
	BroadcastTextPrompt  string `yaml:"broadcast_text_prompt"`
	BroadcastPhotoPrompt string `yaml:"broadcast_photo_prompt"`
	BroadcastNeedText    string `yaml:"broadcast_need_text"`
	BroadcastNeedPhoto   string `yaml:"broadcast_need_photo"`
	BroadcastStarted     string `yaml:"broadcast_started"`
	BroadcastProgress    string `yaml:"broadcast_progress"`
	BroadcastDone        string `yaml:"broadcast_done"`
	BroadcastUsage       string `yaml:"broadcast_usage"`
	FindPrompt           string `yaml:"find_prompt"`
	FindNone             string `yaml:"find_none"`
	FindTitle            string `yaml:"find_title"`
	ExportEmpty          string `yaml:"export_empty"`
	ExportCaption        string `yaml:"export_caption"`
	ClearAsk             string `yaml:"clear_ask"`
	ClearDone            string `yaml:"clear_done"`
	QRCaption            string `yaml:"qr_caption"`
	QRUnavailable        string `yaml:"qr_unavailable"`
	BlockUsage           string `yaml:"block_usage"`
	UnblockUsage         string `yaml:"unblock_usage"`
	BlockedOK            string `yaml:"blocked_ok"`
	UnblockedOK          string `yaml:"unblocked_ok"`
	MsgUsage             string `yaml:"msg_usage"`
	MsgSent              string `yaml:"msg_sent"`
	MsgFailed            string `yaml:"msg_failed"`
	Cancelled            string `yaml:"cancelled"`
	SaveFailed           string `yaml:"save_failed"`
}

// Buttons holds inline button labels.
type Buttons struct {
	Register        string `yaml:"register"`
	Users           string `yaml:"users"`
	Registrations   string `yaml:"registrations"`
	Blocked         string `yaml:"blocked"`
	Stats           string `yaml:"stats"`
	Settings        string `yaml:"settings"`
	BroadcastText   string `yaml:"broadcast_text"`
	BroadcastPhoto  string `yaml:"broadcast_photo"`
	FindUser        string `yaml:"find_user"`
	Export          string `yaml:"export"`
	Clear           string `yaml:"clear"`
	ClearConfirm    string `yaml:"clear_confirm"`
	QR              string `yaml:"qr"`
	EditDay1        string `yaml:"edit_day1"`
	EditDay2        string `yaml:"edit_day2"`
	EditAddress     string `yaml:"edit_address"`
	EditDescription string `yaml:"edit_description"`
	Open            string `yaml:"open"`
	Close           string `yaml:"close"`
	Block           string `yaml:"block"`
	Unblock         string `yaml:"unblock"`
	Back            string `yaml:"back"`
	Cancel          string `yaml:"cancel"`
	Prev            string `yaml:"prev"`
	Next            string `yaml:"next"`
}

// Texts is the full catalogue.
type Texts struct {
	User    User    `yaml:"user"`
	Admin   Admin   `yaml:"admin"`
	Buttons Buttons `yaml:"buttons"`
}

// Default returns the embedded catalogue. It panics if the embedded file is broken,
// which is a build defect caught by the package tests.
func Default() *Texts {
	t, err := Parse(defaultCatalogue)
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads a catalogue file, starting from the embedded defaults so partial overrides work.
// An empty path returns the defaults.
func Load(path string) (*Texts, error) {
	t := Default()
	if strings.TrimSpace(path) == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texts: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("texts: parse %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a catalogue.
func Parse(data []byte) (*Texts, error) {
	var t Texts
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("texts: parse: %w", err)
	}
	return &t, nil
}

// Render replaces {key} placeholders with vars. Unknown placeholders are left as is.
func Render(tmpl string, vars map[string]any) string {
	if len(vars) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
