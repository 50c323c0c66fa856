package eventhandler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/domain/shared"
	"github.com/nextedu/portal/internal/infrastructure/messaging"
)

type fakeLog struct {
	teachers map[string]directory.Teacher
	entries  []directory.ActivityEntry
}

func (f *fakeLog) Teacher(id string) (directory.Teacher, error) {
	t, ok := f.teachers[id]
	if !ok {
		return directory.Teacher{}, shared.ErrTeacherNotFound
	}
	return t, nil
}

func (f *fakeLog) LogActivity(_ context.Context, actor, action string) (directory.ActivityEntry, error) {
	e := directory.ActivityEntry{Actor: actor, Action: action}
	f.entries = append([]directory.ActivityEntry{e}, f.entries...)
	return e, nil
}

func TestActivityRecorder(t *testing.T) {
	log := &fakeLog{teachers: map[string]directory.Teacher{
		"FAC-001": {ID: "FAC-001", Name: "Dr. Meera Iyer"},
	}}
	bus := messaging.NewInMemoryEventBus(messaging.Config{AsyncMode: false})
	defer bus.Close()
	require.NoError(t, NewActivityRecorder(log, nil).Register(bus))

	require.NoError(t, bus.Publish(shared.NewAnnouncementPostedEvent("a1", "Dr. Meera Iyer", "FAC-001", "teacher")))
	require.NoError(t, bus.Publish(shared.NewAnnouncementPostedEvent("a2", "Admin", "", "global")))
	require.NoError(t, bus.Publish(shared.NewNoteSentEvent("FAC-001", "STU-001", "Aarav Patel", "n1")))
	require.NoError(t, bus.Publish(shared.NewStudentTaggedEvent("FAC-001", "STU-001", "Aarav Patel", "Needs Help")))
	require.NoError(t, bus.Publish(shared.NewSnapshotSavedEvent(10, 3, 0)))

	require.Len(t, log.entries, 3)
	assert.Equal(t, `Tagged Aarav Patel with "Needs Help"`, log.entries[0].Action)
	assert.Equal(t, "Sent a note to Aarav Patel", log.entries[1].Action)
	assert.Equal(t, ActionAnnouncement, log.entries[2].Action)
	for _, e := range log.entries {
		assert.Equal(t, "Dr. Meera Iyer", e.Actor)
	}
}

func TestActivityRecorder_UnknownTeacher(t *testing.T) {
	r := NewActivityRecorder(&fakeLog{}, nil)
	err := r.Handle(shared.NewNoteSentEvent("FAC-404", "STU-001", "Aarav Patel", "n1"))
	assert.ErrorIs(t, err, shared.ErrTeacherNotFound)
}
