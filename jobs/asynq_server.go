package jobs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/pemira-app/pemira/internal/platform/httpx"
	"github.com/pemira-app/pemira/internal/policy"
	"github.com/pemira-app/pemira/internal/shared"
	"github.com/pemira-app/pemira/internal/view"
)

// Worker wraps the Asynq server.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// TaskHandler allows injecting custom Asynq handlers during worker setup.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Ledger    *LedgerSubmitter
	Handlers  []TaskHandler
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Ledger == nil {
		return nil, errors.New("jobs: ledger submitter is required")
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskLedgerSubmit, cfg.Ledger.Handle)
	for _, h := range cfg.Handlers {
		if h.Type == "" || h.Handler == nil {
			continue
		}
		mux.HandleFunc(h.Type, h.Handler)
	}
	return &Worker{server: srv, mux: mux, logger: cfg.Logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	if redisOpts.Addr == "" {
		return nil, errors.New("jobs: redis address is required")
	}
	return &Client{client: asynq.NewClient(redisOpts)}, nil
}

// EnqueueLedgerSubmit enqueues a ledger submit task.
func (c *Client) EnqueueLedgerSubmit(ctx context.Context, payload LedgerSubmitPayload) error {
	task, err := NewLedgerSubmitTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// QueueStats summarises one queue for the admin page.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Retry     int
	Archived  int
	Processed int
	Failed    int
}

// Handler exposes the admin queue observability page.
type Handler struct {
	inspector *asynq.Inspector
	templates *view.Engine
	csrf      *shared.CSRFManager
	guard     policy.Guard
	logger    *slog.Logger
}

// NewHandler constructs an HTTP handler for jobs endpoints.
func NewHandler(inspector *asynq.Inspector, templates *view.Engine, csrf *shared.CSRFManager, guard policy.Guard, logger *slog.Logger) *Handler {
	return &Handler{inspector: inspector, templates: templates, csrf: csrf, guard: guard, logger: logger}
}

// MountRoutes attaches job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showQueues)
	r.Get("/health", h.health)
}

func (h *Handler) showQueues(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.guard.RequireRole(w, r, shared.RoleAdmin)
	if !ok {
		return
	}
	stats, err := h.queueStats()
	if err != nil {
		h.logger.Error("queue stats", slog.Any("error", err))
	}
	viewData := view.TemplateData{
		Title:       "Antrean Tugas",
		CSRFToken:   h.csrf.EnsureToken(sess),
		Flash:       shared.PopFlash(w, r),
		Session:     sess,
		CurrentPath: r.URL.Path,
		Data: map[string]any{
			"Stats":       stats,
			"Unavailable": err != nil,
		},
	}
	if err := h.templates.Render(w, "pages/jobs.html", viewData); err != nil {
		h.logger.Error("render template", slog.String("template", "pages/jobs.html"), slog.Any("error", err))
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if _, result := h.guard.RequireActionRole(r, shared.RoleAdmin); result != nil {
		status := http.StatusForbidden
		if result.Error == policy.MsgNotAuthenticated {
			status = http.StatusUnauthorized
		}
		httpx.JSON(w, status, result)
		return
	}
	stats, err := h.queueStats()
	if err != nil {
		h.logger.Warn("jobs health", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "queue unavailable", shared.UserSafeMessage(shared.ErrStoreUnavailable))
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) queueStats() (QueueStats, error) {
	if h.inspector == nil {
		return QueueStats{Queue: QueueDefault}, nil
	}
	info, err := h.inspector.GetQueueInfo(QueueDefault)
	if err != nil {
		return QueueStats{Queue: QueueDefault}, err
	}
	return QueueStats{
		Queue:     info.Queue,
		Pending:   info.Pending,
		Active:    info.Active,
		Retry:     info.Retry,
		Archived:  info.Archived,
		Processed: info.Processed,
		Failed:    info.Failed,
	}, nil
}
