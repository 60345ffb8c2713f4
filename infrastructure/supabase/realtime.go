package supabase

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"marketsync/contract"
	"marketsync/errors"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"google.golang.org/grpc/codes"
)

var _ contract.Realtime = (*Realtime)(nil)

const (
	writeWait        = 10 * time.Second
	defaultHeartbeat = 30 * time.Second
	channelQueueSize = 256

	phoenixTopic = "phoenix"
	eventJoin    = "phx_join"
	eventLeave   = "phx_leave"
	eventReply   = "phx_reply"
	eventError   = "phx_error"
	eventClose   = "phx_close"
	eventChange  = "postgres_changes"
	eventBeat    = "heartbeat"
)

type RealtimeConfig struct {
	URL         string
	AnonKey     string
	AccessToken string
	Heartbeat   time.Duration
}

// envelope is one Phoenix channel frame.
type envelope struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     *string         `json:"ref"`
	JoinRef *string         `json:"join_ref,omitempty"`
}

type reply struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

type changePayload struct {
	Data struct {
		Type            string          `json:"type"`
		Table           string          `json:"table"`
		CommitTimestamp string          `json:"commit_timestamp"`
		Record          contract.Record `json:"record"`
		OldRecord       contract.Record `json:"old_record"`
	} `json:"data"`
}

type changeConfig struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table,omitempty"`
	Filter string `json:"filter,omitempty"`
}

// Realtime is one socket to the realtime service. Each channel has its own
// queue and goroutine so handlers run in arrival order without stalling the
// read loop.
type Realtime struct {
	log         *slog.Logger
	conn        *websocket.Conn
	accessToken string
	heartbeat   time.Duration

	writeMu sync.Mutex
	ref     atomic.Uint64

	mu       sync.Mutex
	channels map[string]*channel
	pending  map[string]chan reply

	done chan struct{}
	once sync.Once
}

type channel struct {
	id      string
	name    string
	topic   string
	handler contract.ChangeHandler
	queue   chan contract.ChangeEvent
	done    chan struct{}
	once    sync.Once
}

func (c *channel) Channel() string { return c.name }

func (c *channel) close() {
	c.once.Do(func() { close(c.done) })
}

func (c *channel) deliver() {
	for {
		select {
		case evt := <-c.queue:
			c.handler(evt)
		case <-c.done:
			return
		}
	}
}

// DialRealtime opens the socket and starts the read and heartbeat loops.
func DialRealtime(ctx context.Context, log *slog.Logger, cfg RealtimeConfig) (*Realtime, error) {
	endpoint, err := socketURL(cfg.URL, cfg.AnonKey)
	if err != nil {
		return nil, errors.Backend(codes.InvalidArgument, "realtime url: %v", err)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, errors.Backend(codes.Unavailable, "realtime dial: %v", err)
	}
	heartbeat := cfg.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	token := cfg.AccessToken
	if token == "" {
		token = cfg.AnonKey
	}
	r := &Realtime{
		log:         log,
		conn:        conn,
		accessToken: token,
		heartbeat:   heartbeat,
		channels:    make(map[string]*channel),
		pending:     make(map[string]chan reply),
		done:        make(chan struct{}),
	}
	go r.readLoop()
	go r.heartbeatLoop()
	log.Info("Realtime connected", "url", cfg.URL)
	return r, nil
}

// socketURL turns the project URL into the websocket endpoint.
func socketURL(project, apiKey string) (string, error) {
	u, err := url.Parse(project)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/realtime/v1/websocket"
	u.RawQuery = url.Values{"apikey": {apiKey}, "vsn": {"1.0.0"}}.Encode()
	return u.String(), nil
}

func (r *Realtime) Subscribe(ctx context.Context, name string, filter contract.ChangeFilter,
	handler contract.ChangeHandler) (contract.Subscription, error) {
	topic := "realtime:" + name
	ch := &channel{
		id:      uuid.NewString(),
		name:    name,
		topic:   topic,
		handler: handler,
		queue:   make(chan contract.ChangeEvent, channelQueueSize),
		done:    make(chan struct{}),
	}
	ref := r.nextRef()
	replies := make(chan reply, 1)

	r.mu.Lock()
	if r.closed() {
		r.mu.Unlock()
		return nil, errors.Backend(codes.Unavailable, "subscribe %s: %v", name, errors.ErrChannelClosed)
	}
	if _, exists := r.channels[topic]; exists {
		r.mu.Unlock()
		return nil, errors.Backend(codes.AlreadyExists, "channel %s is already subscribed", name)
	}
	r.channels[topic] = ch
	r.pending[ref] = replies
	r.mu.Unlock()
	go ch.deliver()

	event := string(filter.Event)
	if event == "" {
		event = string(contract.EventAll)
	}
	payload := map[string]any{
		"config": map[string]any{
			"postgres_changes": []changeConfig{{
				Event:  event,
				Schema: "public",
				Table:  filter.Table,
				Filter: filter.Expression(),
			}},
		},
		"access_token": r.accessToken,
	}
	if err := r.send(topic, eventJoin, payload, ref, &ref); err != nil {
		r.drop(topic, ch, ref)
		return nil, err
	}

	select {
	case rep := <-replies:
		if rep.Status != "ok" {
			r.drop(topic, ch, ref)
			return nil, errors.Backend(codes.FailedPrecondition, "%v: %s: %s",
				errors.ErrSubscriptionFailed, name, string(rep.Response))
		}
	case <-ctx.Done():
		r.drop(topic, ch, ref)
		return nil, errors.Backend(codes.DeadlineExceeded, "subscribe %s: %v", name, ctx.Err())
	case <-r.done:
		r.drop(topic, ch, ref)
		return nil, errors.Backend(codes.Unavailable, "subscribe %s: %v", name, errors.ErrChannelClosed)
	}
	r.log.Debug("Channel joined", "channel", name, "filter", filter.Expression())
	return ch, nil
}

func (r *Realtime) Unsubscribe(_ context.Context, sub contract.Subscription) error {
	topic := "realtime:" + sub.Channel()
	r.mu.Lock()
	current, ok := r.channels[topic]
	if !ok {
		r.mu.Unlock()
		return errors.Backend(codes.NotFound, "channel %s is not subscribed", sub.Channel())
	}
	if theirs, ok := sub.(*channel); ok && theirs.id != current.id {
		r.mu.Unlock()
		return errors.Backend(codes.FailedPrecondition, "channel %s was replaced", sub.Channel())
	}
	delete(r.channels, topic)
	r.mu.Unlock()
	current.close()

	ref := r.nextRef()
	if err := r.send(topic, eventLeave, map[string]any{}, ref, nil); err != nil {
		return err
	}
	r.log.Debug("Channel left", "channel", sub.Channel())
	return nil
}

// Close ends every channel and the socket.
func (r *Realtime) Close() error {
	var err error
	r.once.Do(func() {
		close(r.done)
		r.mu.Lock()
		for topic, ch := range r.channels {
			ch.close()
			delete(r.channels, topic)
		}
		r.mu.Unlock()

		r.writeMu.Lock()
		_ = r.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		r.writeMu.Unlock()
		err = r.conn.Close()
	})
	return err
}

// Done is closed once the socket is gone.
func (r *Realtime) Done() <-chan struct{} {
	return r.done
}

func (r *Realtime) closed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

func (r *Realtime) nextRef() string {
	return strconv.FormatUint(r.ref.Add(1), 10)
}

func (r *Realtime) drop(topic string, ch *channel, ref string) {
	r.mu.Lock()
	if current, ok := r.channels[topic]; ok && current.id == ch.id {
		delete(r.channels, topic)
	}
	delete(r.pending, ref)
	r.mu.Unlock()
	ch.close()
}

func (r *Realtime) send(topic, event string, payload any, ref string, joinRef *string) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Backend(codes.InvalidArgument, "encode %s: %v", event, err)
	}
	frame := envelope{Topic: topic, Event: event, Payload: raw, Ref: &ref, JoinRef: joinRef}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if err := r.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return errors.Backend(codes.Unavailable, "%s %s: %v", event, topic, err)
	}
	if err := r.conn.WriteJSON(frame); err != nil {
		return errors.Backend(codes.Unavailable, "%s %s: %v", event, topic, err)
	}
	return nil
}

func (r *Realtime) heartbeatLoop() {
	ticker := time.NewTicker(r.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			if err := r.send(phoenixTopic, eventBeat, map[string]any{}, r.nextRef(), nil); err != nil {
				r.log.Warn("Heartbeat failed", "error", err)
				_ = r.Close()
				return
			}
		}
	}
}

func (r *Realtime) readLoop() {
	defer func() { _ = r.Close() }()
	for {
		var frame envelope
		if err := r.conn.ReadJSON(&frame); err != nil {
			if !r.closed() {
				r.log.Warn("Realtime connection lost", "error", err)
			}
			return
		}
		switch frame.Event {
		case eventReply:
			r.onReply(frame)
		case eventChange:
			r.onChange(frame)
		case eventError, eventClose:
			r.log.Warn("Channel closed by server", "topic", frame.Topic, "event", frame.Event)
		}
	}
}

func (r *Realtime) onReply(frame envelope) {
	if frame.Ref == nil {
		return
	}
	r.mu.Lock()
	replies, ok := r.pending[*frame.Ref]
	delete(r.pending, *frame.Ref)
	r.mu.Unlock()
	if !ok {
		return
	}
	var rep reply
	if err := json.Unmarshal(frame.Payload, &rep); err != nil {
		rep = reply{Status: "error", Response: frame.Payload}
	}
	replies <- rep
}

func (r *Realtime) onChange(frame envelope) {
	r.mu.Lock()
	ch, ok := r.channels[frame.Topic]
	r.mu.Unlock()
	if !ok {
		return
	}
	var payload changePayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		r.log.Warn("Undecodable change", "topic", frame.Topic, "error", err)
		return
	}
	commitAt, _ := contract.ParseTime(payload.Data.CommitTimestamp)
	evt := contract.ChangeEvent{
		Type:     contract.EventType(payload.Data.Type),
		Table:    payload.Data.Table,
		New:      payload.Data.Record,
		Old:      payload.Data.OldRecord,
		CommitAt: commitAt,
	}
	select {
	case ch.queue <- evt:
	case <-ch.done:
	case <-r.done:
	}
}
