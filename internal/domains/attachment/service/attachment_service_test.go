package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elog-backend/internal/domains/attachment/model"
	"elog-backend/internal/domains/attachment/repository"
	"elog-backend/internal/infrastructure/storage"
	"elog-backend/internal/shared"
)

type recordingEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (e *recordingEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (e *recordingEnqueuer) taskTypes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	types := make([]string, 0, len(e.tasks))
	for _, task := range e.tasks {
		types = append(types, task.Type())
	}
	return types
}

func newService(t *testing.T) (AttachmentService, *recordingEnqueuer) {
	t.Helper()

	enqueuer := &recordingEnqueuer{}
	svc := NewAttachmentService(
		repository.NewMemoryAttachmentRepository(),
		storage.NewMemoryBlobStorage(),
		storage.NewPreviewProcessor(),
		enqueuer,
	)
	return svc, enqueuer
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCreateSchedulesPreview(t *testing.T) {
	svc, enqueuer := newService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, "beam.png", "image/png", pngBytes(t))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	attachment, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "beam.png", attachment.FileName)
	assert.Equal(t, model.PreviewWaiting, attachment.PreviewState)

	assert.Contains(t, enqueuer.taskTypes(), shared.TypeProcessPreview)
}

func TestGetMissingAttachment(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, model.ErrAttachmentNotFound)
}

func TestGetContentRoundTrip(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	data := pngBytes(t)

	id, err := svc.Create(ctx, "beam.png", "image/png", data)
	require.NoError(t, err)

	content, err := svc.GetContent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "beam.png", content.FileName)
	assert.Equal(t, "image/png", content.ContentType)
	assert.Equal(t, data, content.Data)
}

func TestMissingIDs(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, "beam.png", "image/png", pngBytes(t))
	require.NoError(t, err)

	missing, err := svc.MissingIDs(ctx, []string{"ghost-1", id, "ghost-2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost-1", "ghost-2"}, missing)
}

func TestProcessPreviewImage(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, "beam.png", "image/png", pngBytes(t))
	require.NoError(t, err)

	require.NoError(t, svc.ProcessPreview(ctx, id))

	attachment, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.PreviewCompleted, attachment.PreviewState)

	preview, err := svc.GetPreview(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", preview.ContentType)
	assert.NotEmpty(t, preview.Data)
}

func TestProcessPreviewNonImage(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, "readout.txt", "text/plain", []byte("no image here"))
	require.NoError(t, err)

	require.NoError(t, svc.ProcessPreview(ctx, id))

	attachment, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.PreviewNotAvailable, attachment.PreviewState)

	_, err = svc.GetPreview(ctx, id)
	assert.ErrorIs(t, err, model.ErrPreviewNotReady)
}

func TestGetPreviewBeforeProcessing(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, "beam.png", "image/png", pngBytes(t))
	require.NoError(t, err)

	_, err = svc.GetPreview(ctx, id)
	assert.ErrorIs(t, err, model.ErrPreviewNotReady)
}

func TestRequeueStalled(t *testing.T) {
	svc, enqueuer := newService(t)
	ctx := context.Background()

	stalledID, err := svc.Create(ctx, "stalled.png", "image/png", pngBytes(t))
	require.NoError(t, err)

	doneID, err := svc.Create(ctx, "done.png", "image/png", pngBytes(t))
	require.NoError(t, err)
	require.NoError(t, svc.ProcessPreview(ctx, doneID))

	time.Sleep(5 * time.Millisecond)

	count, err := svc.RequeueStalled(ctx, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// one enqueue per Create plus one for the requeued sweep
	assert.Len(t, enqueuer.taskTypes(), 3)

	attachment, err := svc.Get(ctx, stalledID)
	require.NoError(t, err)
	assert.Equal(t, model.PreviewWaiting, attachment.PreviewState)
}
