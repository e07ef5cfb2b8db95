package admin

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/eventbot/core/telegram/callbacks"
	"github.com/m3rciful/eventbot/core/telegram/state"
	"github.com/m3rciful/eventbot/internal/broadcast"
	"github.com/m3rciful/eventbot/internal/domain"
	"github.com/m3rciful/eventbot/internal/messenger/messengertest"
	"github.com/m3rciful/eventbot/internal/store"
	"github.com/m3rciful/eventbot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

const (
	operator int64 = 777
	stranger int64 = 778
)

type fakeBroadcaster struct {
	payloads []broadcast.Payload
}

func (b *fakeBroadcaster) Start(_ context.Context, _ int64, p broadcast.Payload) {
	b.payloads = append(b.payloads, p)
}

type fixture struct {
	r    *Router
	st   *store.Store
	out  *messengertest.Recorder
	sess state.Manager
	bc   *fakeBroadcaster
	tx   *texts.Texts
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(context.Background(), store.NewMemoryBackend(), domain.DefaultEvent())
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		st:   st,
		out:  messengertest.New("event_bot"),
		sess: state.NewMemoryManager(),
		bc:   &fakeBroadcaster{},
		tx:   texts.Default(),
	}
	f.r = New(Deps{
		Store:     st,
		Sessions:  f.sess,
		Out:       f.out,
		Texts:     f.tx,
		Broadcast: f.bc,
		Now:       func() time.Time { return time.Date(2025, 11, 21, 10, 0, 0, 0, time.UTC) },
	}, Options{OperatorID: operator, PageSize: 3})
	return f
}

func (f *fixture) press(t *testing.T, chatID int64, a callbacks.Action) error {
	t.Helper()
	return f.r.Callback(context.Background(), Query{ChatID: chatID, CallbackID: "cb", Action: a})
}

func uniques(m *tele.ReplyMarkup) map[string][]string {
	out := map[string][]string{}
	if m == nil {
		return out
	}
	for _, row := range m.InlineKeyboard {
		for _, b := range row {
			out[b.Unique] = append(out[b.Unique], b.Data)
		}
	}
	return out
}

func TestAuthorizeIsExact(t *testing.T) {
	f := newFixture(t)
	if f.r.Authorize(operator) != nil {
		t.Error("operator rejected")
	}
	for _, id := range []int64{stranger, 77, 7770, -operator, 0} {
		if err := f.r.Authorize(id); !errors.Is(err, ErrAccessDenied) {
			t.Errorf("Authorize(%d) = %v", id, err)
		}
	}
	nobody := New(Deps{Store: f.st, Sessions: f.sess, Out: f.out, Texts: f.tx}, Options{})
	if nobody.Authorize(0) == nil {
		t.Error("zero operator id authorized chat 0")
	}
}

func TestNonOperatorChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, _ = f.st.TouchUser(ctx, 5, "Anna", "")
	_, _ = f.st.AddRegistration(ctx, 5, "Anna", 25, "+79991234567")
	eventBefore := f.st.Event()

	for _, name := range Commands() {
		if err := f.r.Command(ctx, stranger, name, "5 hello"); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	for _, kind := range Kinds() {
		if err := f.press(t, stranger, callbacks.Action{Kind: kind, Target: 5}); err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
	}

	if f.st.Event() != eventBefore || f.st.IsBlocked(5) || len(f.st.Registrations()) != 1 {
		t.Error("non-operator mutated state")
	}
	if f.sess.Len() != 0 || len(f.bc.payloads) != 0 {
		t.Error("non-operator opened a session or broadcast")
	}
	for _, m := range f.out.To(stranger) {
		if m.Text != f.tx.User.AccessDenied {
			t.Errorf("stranger got %q", m.Text)
		}
	}
	if len(f.out.To(5)) != 0 {
		t.Error("/msg delivered for a non-operator")
	}
	answers := f.out.Answers()
	if len(answers) != len(Kinds()) {
		t.Fatalf("answers = %d, want %d", len(answers), len(Kinds()))
	}
	for _, a := range answers {
		if !a.Alert || a.Text != f.tx.User.AccessDenied {
			t.Errorf("answer = %+v", a)
		}
	}
}

func TestViewsEditRememberedMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.r.Command(ctx, operator, CmdAdmin, ""); err != nil {
		t.Fatal(err)
	}
	menu, _ := f.out.Last(operator)
	if menu.EditOf != 0 || uniques(menu.Markup)["users"] == nil {
		t.Fatalf("menu = %+v", menu)
	}

	_ = f.press(t, operator, callbacks.Action{Kind: callbacks.KindStats})
	stats, _ := f.out.Last(operator)
	if stats.EditOf != menu.ID {
		t.Errorf("stats view edited %d, want %d", stats.EditOf, menu.ID)
	}

	f.out.FailEdit = errors.New("message to edit not found")
	_ = f.press(t, operator, callbacks.Action{Kind: callbacks.KindMenu})
	fresh, _ := f.out.Last(operator)
	if fresh.EditOf != 0 {
		t.Fatal("failed edit did not fall back to a new message")
	}
	f.out.FailEdit = nil
	_ = f.press(t, operator, callbacks.Action{Kind: callbacks.KindSettings})
	if settings, _ := f.out.Last(operator); settings.EditOf != fresh.ID {
		t.Errorf("settings edited %d, want the replacement %d", settings.EditOf, fresh.ID)
	}
	if n := len(f.out.Answers()); n != 3 {
		t.Errorf("answers = %d, want one per press", n)
	}
}

func TestUserListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for id := int64(1); id <= 7; id++ {
		_, _, _ = f.st.TouchUser(ctx, id, "user", "")
	}

	_ = f.press(t, operator, callbacks.Action{Kind: callbacks.KindUsers})
	first, _ := f.out.Last(operator)
	if !strings.Contains(first.Text, "1/3") || !strings.Contains(first.Text, "<code>7</code>") {
		t.Errorf("first page = %q", first.Text)
	}
	nav := uniques(first.Markup)["users"]
	if len(nav) != 1 || nav[0] != "p1" {
		t.Errorf("first page nav = %v", nav)
	}

	_ = f.press(t, operator, callbacks.Action{Kind: callbacks.KindUsers, Page: 9})
	last, _ := f.out.Last(operator)
	if !strings.Contains(last.Text, "3/3") || !strings.Contains(last.Text, "<code>1</code>") {
		t.Errorf("clamped page = %q", last.Text)
	}
	if nav := uniques(last.Markup)["users"]; len(nav) != 1 || nav[0] != "p1" {
		t.Errorf("last page nav = %v", nav)
	}
}

func TestBlockAndUnblock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sess.Put(5, state.Session{State: state.StateWaitingAge})

	if err := f.r.Command(ctx, operator, CmdBlock, "5"); err != nil {
		t.Fatal(err)
	}
	if !f.st.IsBlocked(5) || f.sess.InProgress(5) {
		t.Error("block did not apply")
	}
	_ = f.r.Command(ctx, operator, CmdBlock, "5")
	if len(f.st.Blocked()) != 1 {
		t.Errorf("blocked = %v", f.st.Blocked())
	}

	_ = f.press(t, operator, callbacks.Action{Kind: callbacks.KindBlocked})
	view, _ := f.out.Last(operator)
	if got := uniques(view.Markup)["unblock"]; len(got) != 1 || got[0] != "5" {
		t.Errorf("unblock buttons = %v", got)
	}

	_ = f.press(t, operator, callbacks.Action{Kind: callbacks.KindUnblock, Target: 5})
	if f.st.IsBlocked(5) {
		t.Error("unblock did not apply")
	}

	_ = f.r.Command(ctx, operator, CmdBlock, "abc")
	if last, _ := f.out.Last(operator); last.Text != f.tx.Admin.BlockUsage {
		t.Errorf("bad id reply = %q", last.Text)
	}
}

func TestEnterAdminStates(t *testing.T) {
	cases := map[callbacks.Kind]state.State{
		callbacks.KindEditDay1:        state.StateAdminEditDay1,
		callbacks.KindEditDay2:        state.StateAdminEditDay2,
		callbacks.KindEditAddress:     state.StateAdminEditAddress,
		callbacks.KindEditDescription: state.StateAdminEditDescription,
		callbacks.KindBroadcastText:   state.StateAdminBroadcastText,
		callbacks.KindBroadcastPhoto:  state.StateAdminBroadcastPhoto,
		callbacks.KindFindUser:        state.StateAdminFindUser,
	}
	for kind, want := range cases {
		f := newFixture(t)
		_ = f.press(t, operator, callbacks.Action{Kind: kind})
		s, ok := f.sess.Get(operator)
		if !ok || s.State != want {
			t.Errorf("%s: state = %s", kind, s.State)
		}
		if last, _ := f.out.Last(operator); uniques(last.Markup)["cancel"] == nil {
			t.Errorf("%s: prompt without cancel button", kind)
		}
	}
}

func TestToggleAndClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.st.AddRegistration(ctx, 1, "A", 20, "+70000000000")

	_ = f.press(t, operator, callbacks.Action{Kind: callbacks.KindToggleActive})
	if f.st.Event().Active {
		t.Error("toggle did not close registration")
	}
	_ = f.press(t, operator, callbacks.Action{Kind: callbacks.KindClearAsk})
	if len(f.st.Registrations()) != 1 {
		t.Fatal("ask cleared registrations")
	}
	_ = f.press(t, operator, callbacks.Action{Kind: callbacks.KindClearConfirm})
	if len(f.st.Registrations()) != 0 {
		t.Error("confirm did not clear")
	}
	answers := f.out.Answers()
	if !strings.Contains(answers[len(answers)-1].Text, "1") {
		t.Errorf("clear toast = %q", answers[len(answers)-1].Text)
	}
}

func TestExportAndQR(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_ = f.r.Command(ctx, operator, CmdExport, "")
	if last, _ := f.out.Last(operator); last.Text != f.tx.Admin.ExportEmpty {
		t.Errorf("empty export = %+v", last)
	}

	_, _ = f.st.AddRegistration(ctx, 1, "Anna", 25, "+79991234567")
	_ = f.press(t, operator, callbacks.Action{Kind: callbacks.KindExport})
	last, _ := f.out.Last(operator)
	if last.Doc == nil || last.Doc.Name != "registrations_2025-11-21.csv" || !bytes.Contains(last.Doc.Data, []byte("Anna")) {
		t.Fatalf("export = %+v", last)
	}

	_ = f.press(t, operator, callbacks.Action{Kind: callbacks.KindQR})
	last, _ = f.out.Last(operator)
	if last.Photo == nil || !bytes.HasPrefix(last.Photo.Data, []byte("\x89PNG")) {
		t.Fatalf("qr = %+v", last)
	}
	if !strings.Contains(last.Text, "https://t.me/event_bot?start=reg") {
		t.Errorf("qr caption = %q", last.Text)
	}
}

func TestMsgAndBroadcastCommands(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_ = f.r.Command(ctx, operator, CmdMsg, "5 see <you>")
	if m, ok := f.out.Last(5); !ok || m.Text != "see &lt;you&gt;" {
		t.Errorf("direct message = %+v", m)
	}
	f.out.FailSend[6] = errors.New("chat not found")
	_ = f.r.Command(ctx, operator, CmdMsg, "6 hi")
	if last, _ := f.out.Last(operator); !strings.Contains(last.Text, "chat not found") {
		t.Errorf("failure reply = %q", last.Text)
	}

	_ = f.r.Command(ctx, operator, CmdBroadcast, "")
	if len(f.bc.payloads) != 0 {
		t.Error("empty broadcast started")
	}
	_ = f.r.Command(ctx, operator, CmdBroadcast, "hello all")
	if len(f.bc.payloads) != 1 || f.bc.payloads[0].Text != "hello all" {
		t.Errorf("payloads = %+v", f.bc.payloads)
	}
}

func TestSearchResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, _ = f.st.TouchUser(ctx, 10, "Anna", "")
	_, _ = f.st.Block(ctx, 10)
	_, _, _ = f.st.TouchUser(ctx, 11, "Joanna", "")

	_ = f.r.ShowSearchResults(ctx, operator, "anna", f.st.FindUsers("anna", 10))
	last, _ := f.out.Last(operator)
	u := uniques(last.Markup)
	if len(u["block"]) != 1 || u["block"][0] != "11" || len(u["unblock"]) != 1 || u["unblock"][0] != "10" {
		t.Errorf("result buttons = %v", u)
	}

	_ = f.r.ShowSearchResults(ctx, operator, "<zz>", nil)
	if last, _ := f.out.Last(operator); !strings.Contains(last.Text, "&lt;zz&gt;") {
		t.Errorf("empty result = %q", last.Text)
	}
}
