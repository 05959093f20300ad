// Package bot contains the transport-independent core of the bot: the tagged
// inbound event type, the reply shape, the verse formatter, and the
// dispatchers that turn one inbound event into at most one reply. Nothing in
// this package imports a Telegram SDK; the adapter in internal/telegram
// constructs events at the boundary and ships replies back.
package bot

// Kind tags an inbound event with the only four shapes the core handles.
type Kind string

const (
	KindStart             Kind = "start"
	KindForwardedMessage  Kind = "forwarded_message"
	KindTextMessage       Kind = "text_message"
	KindCallbackSelection Kind = "callback_selection"
)

// Origin identifies the chat and message a forwarded message came from.
// The pair is the deduplication source for verse uids.
type Origin struct {
	ChatID    int64
	MessageID int64
}

// Sender is the authoring Telegram user.
type Sender struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Event is one inbound update, already detached from SDK object shapes.
// Fields beyond Kind/ChatID/Sender are populated per kind:
//   - forwarded_message: Caption, Text, AudioFileID, ForwardOrigin
//   - text_message:      Text
//   - callback_selection: SelectionToken, CallbackID
type Event struct {
	Kind     Kind
	UpdateID int64
	ChatID   int64
	Sender   Sender
	IsAdmin  bool

	Text        string
	Caption     string
	AudioFileID string

	ForwardOrigin *Origin

	SelectionToken string
	CallbackID     string
}

// Button is one selectable item in a reply keyboard; Token travels back as
// the selection token of a later callback_selection event.
type Button struct {
	Label string
	Token string
}

// Reply is the single outbound message a handler produces.
// When AudioFileID or AudioPath is set the transport sends an audio message
// with Text as its caption; otherwise Text goes out as a plain message.
type Reply struct {
	Text        string
	AudioFileID string     // Telegram-hosted audio, sent by file id
	AudioPath   string     // local temp file (music mode)
	Performer   string     // audio performer metadata, music mode only
	Buttons     [][]Button // inline keyboard rows, optional

	// cleanup releases the temp artifact backing AudioPath. Handlers that own
	// a file set it; the transport calls Close once the reply is sent.
	cleanup func()
}

// HasAudio reports whether the reply carries any audio payload.
func (r *Reply) HasAudio() bool { return r.AudioFileID != "" || r.AudioPath != "" }

// Close releases any resources tied to the reply. Safe on nil and on replies
// without an artifact.
func (r *Reply) Close() {
	if r != nil && r.cleanup != nil {
		r.cleanup()
	}
}
