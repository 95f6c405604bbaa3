package telegram

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/Lukazavrr/hotwheels-bot/internal/bot"
	"github.com/Lukazavrr/hotwheels-bot/internal/observe"
	"github.com/Lukazavrr/hotwheels-bot/internal/session"
)

// Gateway adapts the Telegram Bot API to the handler layer. It implements
// bot.Transport for outbound messages and render.FileResolver for turning
// stored photo ids into fetchable URLs.
type Gateway struct {
	bot     *tele.Bot
	token   string
	obs     *observe.Observer
	baseCtx context.Context
}

func New(token string, obs *observe.Observer) (*Gateway, error) {
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	tb, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	return &Gateway{bot: tb, token: token, obs: obs, baseCtx: context.Background()}, nil
}

// Start registers the handlers and blocks polling for updates until ctx
// is cancelled.
func (g *Gateway) Start(ctx context.Context, h *bot.Bot) {
	g.baseCtx = ctx
	g.register(h)

	go func() {
		<-ctx.Done()
		g.bot.Stop()
	}()

	g.obs.Log().Info().Str("bot", g.bot.Me.Username).Msg("telegram polling started")
	g.bot.Start()
}

func user(c tele.Context) bot.User {
	u := bot.User{}
	if s := c.Sender(); s != nil {
		u.ID = s.ID
		u.Username = s.Username
	}
	if chat := c.Chat(); chat != nil {
		u.ChatID = chat.ID
	}
	return u
}

// callbackActions mirrors the actions the handler layer embeds in inline
// buttons; each becomes a telebot unique.
var callbackActions = []string{"item", "add", "menu", "list", "rm", "clear", "checkout"}

func (g *Gateway) register(h *bot.Bot) {
	g.bot.Handle("/start", g.logged("/start", func(c tele.Context) error {
		return h.HandleStart(g.baseCtx, user(c))
	}))
	g.bot.Handle("/myid", g.logged("/myid", func(c tele.Context) error {
		return h.HandleMyID(g.baseCtx, user(c))
	}))
	g.bot.Handle("/add", g.logged("/add", func(c tele.Context) error {
		return h.HandleAdminAdd(g.baseCtx, user(c))
	}))
	g.bot.Handle("/delete", g.logged("/delete", func(c tele.Context) error {
		return h.HandleAdminDelete(g.baseCtx, user(c))
	}))

	g.bot.Handle(tele.OnText, g.logged("text", func(c tele.Context) error {
		return h.HandleText(g.baseCtx, user(c), c.Text())
	}))
	g.bot.Handle(tele.OnPhoto, g.logged("photo", func(c tele.Context) error {
		photo := c.Message().Photo
		if photo == nil {
			return nil
		}
		return h.HandlePhoto(g.baseCtx, user(c), photo.FileID)
	}))
	g.bot.Handle(tele.OnContact, g.logged("contact", func(c tele.Context) error {
		contact := c.Message().Contact
		if contact == nil {
			return nil
		}
		return h.HandleContact(g.baseCtx, user(c), contact.PhoneNumber)
	}))

	for _, action := range callbackActions {
		btn := tele.Btn{Unique: action}
		g.bot.Handle(&btn, g.logged("cb:"+action, func(c tele.Context) error {
			notice, err := h.HandleCallback(g.baseCtx, user(c), action, c.Data())
			if rerr := c.Respond(&tele.CallbackResponse{Text: notice}); rerr != nil {
				g.obs.Log().Warn().Str("action", action).Err(rerr).Msg("callback answer failed")
			}
			return err
		}))
	}
}

func (g *Gateway) logged(name string, handler func(tele.Context) error) func(tele.Context) error {
	return func(c tele.Context) error {
		var userID, chatID int64
		if s := c.Sender(); s != nil {
			userID = s.ID
		}
		if chat := c.Chat(); chat != nil {
			chatID = chat.ID
		}
		g.obs.Log().Debug().
			Str("update", name).
			Int("user", int(userID)).
			Int("chat", int(chatID)).
			Msg("update received")

		if err := handler(c); err != nil {
			g.obs.Log().Error().Str("update", name).Err(err).Msg("handler failed")
		}
		return nil
	}
}

// SendText implements bot.Transport.
func (g *Gateway) SendText(_ context.Context, chatID int64, text string, m *bot.Markup) (session.MessageRef, error) {
	msg, err := g.bot.Send(tele.ChatID(chatID), text, sendOptions(m)...)
	if err != nil {
		return session.MessageRef{}, fmt.Errorf("failed to send message: %w", err)
	}
	return session.MessageRef{ChatID: chatID, MessageID: msg.ID}, nil
}

// SendPhoto implements bot.Transport. Raw bytes take priority over a
// stored file id.
func (g *Gateway) SendPhoto(_ context.Context, chatID int64, photo bot.PhotoSource, caption string, m *bot.Markup) (session.MessageRef, error) {
	p := &tele.Photo{Caption: caption}
	if len(photo.Bytes) > 0 {
		p.File = tele.FromReader(bytes.NewReader(photo.Bytes))
	} else {
		p.File = tele.File{FileID: photo.FileID}
	}

	msg, err := g.bot.Send(tele.ChatID(chatID), p, sendOptions(m)...)
	if err != nil {
		return session.MessageRef{}, fmt.Errorf("failed to send photo: %w", err)
	}
	return session.MessageRef{ChatID: chatID, MessageID: msg.ID}, nil
}

// Delete implements bot.Transport.
func (g *Gateway) Delete(_ context.Context, ref session.MessageRef) error {
	return g.bot.Delete(tele.StoredMessage{
		MessageID: strconv.Itoa(ref.MessageID),
		ChatID:    ref.ChatID,
	})
}

// ResolveFileURL implements render.FileResolver. Telegram file paths are
// served from the bot API host and expire, so the URL is resolved fresh
// per render.
func (g *Gateway) ResolveFileURL(_ context.Context, fileID string) (string, error) {
	f, err := g.bot.FileByID(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file %s: %w", fileID, err)
	}
	return fmt.Sprintf("%s/file/bot%s/%s", g.bot.URL, g.token, f.FilePath), nil
}

func sendOptions(m *bot.Markup) []interface{} {
	rm := toReplyMarkup(m)
	if rm == nil {
		return nil
	}
	return []interface{}{rm}
}

func toReplyMarkup(m *bot.Markup) *tele.ReplyMarkup {
	if m == nil {
		return nil
	}
	rm := &tele.ReplyMarkup{ResizeKeyboard: true}

	if m.RemoveReply {
		rm.RemoveKeyboard = true
		return rm
	}

	if len(m.Reply) > 0 {
		var rows []tele.Row
		for i, row := range m.Reply {
			var btns []tele.Btn
			for j, label := range row {
				if i == 0 && j == 0 && m.RequestContact {
					btns = append(btns, rm.Contact(label))
					continue
				}
				btns = append(btns, rm.Text(label))
			}
			rows = append(rows, rm.Row(btns...))
		}
		rm.Reply(rows...)
	}

	if len(m.Inline) > 0 {
		var rows []tele.Row
		for _, row := range m.Inline {
			var btns []tele.Btn
			for _, b := range row {
				btns = append(btns, rm.Data(b.Text, b.Action, b.Data))
			}
			rows = append(rows, rm.Row(btns...))
		}
		rm.Inline(rows...)
	}
	return rm
}
