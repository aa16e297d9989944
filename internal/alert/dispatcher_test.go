package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/cache"
	"github.com/spec-kit/helpdesk/internal/clients/telegram"
	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

type stubBots struct {
	tokens map[string]string
	calls  int
}

func (s *stubBots) Token(_ context.Context, name string) (string, error) {
	s.calls++
	token, ok := s.tokens[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", cache.ErrUnknownBot, name)
	}
	return token, nil
}

type stubTelegram struct {
	sent []telegram.SendMessageRequest
	err  error
}

func (s *stubTelegram) SendMessage(_ context.Context, token string, msg telegram.SendMessageRequest) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, msg)
	return "42", nil
}

type stubMail struct {
	to  []string
	err error
}

func (s *stubMail) Send(_ context.Context, to, subject, body string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.to = append(s.to, to)
	return "<id@smtp.test>", nil
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) ObserveDispatch(platform, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[platform+"/"+outcome]++
}

type fixture struct {
	bots     *stubBots
	tg       *stubTelegram
	mail     *stubMail
	observer *countingObserver
	d        *Dispatcher
}

func newFixture() *fixture {
	f := &fixture{
		bots:     &stubBots{tokens: map[string]string{"ops": "123:abc"}},
		tg:       &stubTelegram{},
		mail:     &stubMail{},
		observer: &countingObserver{},
	}
	f.d = NewDispatcher(nil, f.observer,
		NewTelegramChannel(f.bots, f.tg),
		NewGmailChannel(f.mail),
	)
	return f
}

func validTelegram() domain.AlertRequest {
	return domain.AlertRequest{
		Platform: domain.PlatformTelegram,
		BotName:  "ops",
		ChatID:   "123",
		Message:  "hi",
		Username: "a",
	}
}

func TestTelegramValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(r *domain.AlertRequest)
		code   string
		field  string
	}{
		{name: "missing bot name", mutate: func(r *domain.AlertRequest) { r.BotName = "" }, code: apperrors.CodeValidationFailed, field: "botName"},
		{name: "blank chat id", mutate: func(r *domain.AlertRequest) { r.ChatID = "  " }, code: apperrors.CodeValidationFailed, field: "chatId"},
		{name: "missing message", mutate: func(r *domain.AlertRequest) { r.Message = "" }, code: apperrors.CodeValidationFailed, field: "message"},
		{name: "missing username", mutate: func(r *domain.AlertRequest) { r.Username = "" }, code: apperrors.CodeValidationFailed, field: "username"},
		{
			name:   "assignment without assigner",
			mutate: func(r *domain.AlertRequest) { r.Message = "Ticket TCK-9 Assigned To Dana" },
			code:   apperrors.CodeValidationFailed,
			field:  "assignerName",
		},
		{
			name:   "separator only",
			mutate: func(r *domain.AlertRequest) { r.Message = strings.Repeat("=", 56) },
			code:   apperrors.CodeEmptyEffectiveMessage,
		},
		{
			name:   "stacked separators",
			mutate: func(r *domain.AlertRequest) { r.Message = "-----\n\n=====\n" },
			code:   apperrors.CodeEmptyEffectiveMessage,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture()
			req := validTelegram()
			tt.mutate(&req)

			_, err := f.d.Dispatch(context.Background(), req)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			if tt.field != "" {
				assert.Contains(t, apperrors.FieldErrors(err), tt.field)
			}
			assert.Zero(t, f.bots.calls)
			assert.Empty(t, f.tg.sent)
		})
	}
}

func TestTelegramDelivers(t *testing.T) {
	f := newFixture()
	thread := int64(5)
	req := validTelegram()
	req.Message = "Ticket TCK-9 assigned to Dana"
	req.AssignerName = "Lee"
	req.ThreadID = &thread

	res, err := f.d.Dispatch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, &domain.DispatchResult{Platform: domain.PlatformTelegram, Delivered: true, ID: "42"}, res)

	require.Len(t, f.tg.sent, 1)
	assert.Equal(t, "123", f.tg.sent[0].ChatID)
	assert.Equal(t, &thread, f.tg.sent[0].MessageThreadID)
	assert.Contains(t, f.tg.sent[0].Text, "assigned by Lee")
	assert.Equal(t, 1, f.observer.counts["telegram/delivered"])
}

func TestTelegramUnknownBotIsDeliveryError(t *testing.T) {
	f := newFixture()
	req := validTelegram()
	req.BotName = "ghost"

	_, err := f.d.Dispatch(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindDelivery, apperrors.KindOf(err))
	assert.ErrorIs(t, err, cache.ErrUnknownBot)
	assert.Empty(t, f.tg.sent)
	assert.Equal(t, 1, f.observer.counts["telegram/failed"])
}

func TestTelegramSendFailureIsDeliveryError(t *testing.T) {
	f := newFixture()
	apiErr := &telegram.APIError{StatusCode: 403, Description: "bot was kicked"}
	f.tg.err = apiErr

	_, err := f.d.Dispatch(context.Background(), validTelegram())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDeliveryFailed))
	var target *telegram.APIError
	assert.True(t, errors.As(err, &target))
}

func TestGmail(t *testing.T) {
	f := newFixture()

	_, err := f.d.Dispatch(context.Background(), domain.AlertRequest{Platform: domain.PlatformGmail, Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, apperrors.FieldErrors(err), "email")

	_, err = f.d.Dispatch(context.Background(), domain.AlertRequest{Platform: domain.PlatformGmail, Email: "not-an-address", Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, "email", apperrors.FieldErrors(err)["email"])
	assert.Empty(t, f.mail.to)

	res, err := f.d.Dispatch(context.Background(), domain.AlertRequest{Platform: "GMAIL", Email: "agent@example.com", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "<id@smtp.test>", res.ID)
	assert.Equal(t, []string{"agent@example.com"}, f.mail.to)
}

func TestGmailFailureIsolatedPerCall(t *testing.T) {
	f := newFixture()
	f.mail.err = errors.New("550 mailbox unavailable")

	_, mailErr := f.d.Dispatch(context.Background(), domain.AlertRequest{Platform: domain.PlatformGmail, Email: "a@example.com", Message: "hi"})
	res, tgErr := f.d.Dispatch(context.Background(), validTelegram())

	assert.Equal(t, apperrors.KindDelivery, apperrors.KindOf(mailErr))
	require.NoError(t, tgErr)
	assert.True(t, res.Delivered)
}

func TestUnsupportedPlatform(t *testing.T) {
	f := newFixture()

	_, err := f.d.Dispatch(context.Background(), domain.AlertRequest{Platform: "sms", Message: "hi"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnsupportedPlatform))
	assert.Equal(t, 1, f.observer.counts["sms/unsupported"])
}

func TestOnlySeparators(t *testing.T) {
	assert.True(t, onlySeparators("===="))
	assert.True(t, onlySeparators("  ----  \n===="))
	assert.False(t, onlySeparators("==== ticket ===="))
	assert.False(t, onlySeparators("=-=-"))
	assert.False(t, onlySeparators(""))
	assert.False(t, onlySeparators("ok\n----"))
}

func TestIsAssignment(t *testing.T) {
	assert.True(t, IsAssignment("Ticket TCK-1 assigned to Dana"))
	assert.True(t, IsAssignment("ASSIGNED TO night shift"))
	assert.False(t, IsAssignment("Ticket TCK-1 reassigned to Dana"))
	assert.False(t, IsAssignment("unassigned tonight"))
}
