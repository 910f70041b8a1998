package restricted

// Operation names a mutating Domain operation.
type Operation string

const (
	// OpInsert is recorded by Insert and each element of InsertMany.
	OpInsert Operation = "insert"
	// OpRemove is recorded by Remove and each element of RemoveMany.
	OpRemove Operation = "remove"
	// OpReplace is recorded by Replace.
	OpReplace Operation = "replace"
)

// Notice names a notification delivered to subscribers.
type Notice string

const (
	// NoticeDeletion tells subscribers an element was removed.
	NoticeDeletion Notice = "deletion"
	// NoticeReplacement tells subscribers an element was replaced by another.
	NoticeReplacement Notice = "replacement"
)

// Recorder receives Domain activity. Implementations must not call back into
// the Domain.
//
//go:generate mockgen -package mockrestricted -source=recorder.go -destination=mock/mockrestricted.go *
type Recorder interface {
	// RecordMutation is called once per Insert, Remove or Replace call.
	RecordMutation(op Operation, changed bool)
	// RecordNotice is called after a notice has been delivered to every
	// subscriber. affected counts the subscribers whose slot changed.
	RecordNotice(kind Notice, delivered, affected int)
	// RecordSubscribers is called whenever the subscriber count changes.
	RecordSubscribers(count int)
}

type nopRecorder struct{}

func (nopRecorder) RecordMutation(Operation, bool) {}
func (nopRecorder) RecordNotice(Notice, int, int) {}
func (nopRecorder) RecordSubscribers(int)         {}
