package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/pjecz/plataforma-web/internal/metrics"
	"github.com/pjecz/plataforma-web/internal/workflow"
	"github.com/pjecz/plataforma-web/storage/model"
)

// MensajeEnCurso is returned when the user already has the same job running.
const MensajeEnCurso = "Debe esperar porque hay una tarea en el fondo sin terminar."

// Job is the work of a task; its result becomes the tarea's mensaje.
type Job func(ctx context.Context) (string, error)

// Runner launches jobs in goroutines and records them as tareas.
type Runner struct {
	guard   Guard
	tareas  model.TareasStore
	metrics *metrics.Metrics
	ttl     time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner returns a Runner. Claims expire after ttl even if a job never
// finishes.
func NewRunner(guard Guard, tareas model.TareasStore, m *metrics.Metrics, ttl time.Duration) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		guard:   guard,
		tareas:  tareas,
		metrics: m,
		ttl:     ttl,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func guardKey(actor workflow.Actor, comando string) string {
	return fmt.Sprintf("%d:%s", actor.UsuarioID, comando)
}

// Launch records a tarea and runs job in the background. A second launch of
// the same comando by the same user fails with a ConflictError until the
// first one ends.
func (r *Runner) Launch(ctx context.Context, actor workflow.Actor, comando, descripcion string, job Job) (
	*model.Tarea, error,
) {
	key := guardKey(actor, comando)
	ok, err := r.guard.Acquire(ctx, key, r.ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, workflow.ConflictError{Message: MensajeEnCurso}
	}
	tarea := &model.Tarea{
		ID:          uuid.NewString(),
		Comando:     comando,
		Descripcion: descripcion,
	}
	if actor.UsuarioID != 0 {
		id := actor.UsuarioID
		tarea.UsuarioID = &id
	}
	if err = r.tareas.Create(tarea); err != nil {
		_ = r.guard.Release(ctx, key)
		return nil, err
	}

	r.wg.Add(1)
	r.metrics.TaskStarted(comando)
	go func() {
		defer r.wg.Done()
		defer r.metrics.TaskFinished(comando)
		defer func() {
			if err := r.guard.Release(context.Background(), key); err != nil {
				log.WithError(err).WithField("tarea", tarea.ID).Error("could not release task guard")
			}
		}()
		logger := log.WithFields(log.Fields{"tarea": tarea.ID, "comando": comando})
		logger.Info("task started")
		mensaje, err := job(r.ctx)
		if err != nil {
			logger.WithError(err).Error("task failed")
			mensaje = "Error: " + err.Error()
		}
		if err = r.tareas.Finish(tarea.ID, mensaje); err != nil {
			logger.WithError(err).Error("could not finish tarea")
			return
		}
		logger.WithField("mensaje", mensaje).Info("task finished")
	}()
	return tarea, nil
}

// Wait blocks until every launched job has returned
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Close cancels the running jobs and waits for them
func (r *Runner) Close() {
	r.cancel()
	r.wg.Wait()
}
