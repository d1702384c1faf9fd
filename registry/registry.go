package registry

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/semaflow-labs/semaflow/semaerr"
)

// Registry maps a SemanticTable's data_source_name to the BackendClient
// serving it. It is built once during handle construction and closed when
// the handle is destroyed (§4.5 "Lifecycle"); acquisition during a request
// is a short-held read lock, matching the "internal state ... guarded by
// short-held locks" posture §5 describes for the connection pool.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]BackendClient
	log     logrus.FieldLogger
}

// New builds an empty Registry. log may be nil, in which case a disabled
// logrus logger is used — the same "nil logger is a no-op" convention the
// teacher's audit log follows.
func New(log logrus.FieldLogger) *Registry {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Registry{clients: make(map[string]BackendClient), log: log}
}

// Register binds name (a data source's Name) to client, replacing and
// closing any prior client registered under the same name.
func (r *Registry) Register(name string, client BackendClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.clients[name]; ok {
		_ = old.Close()
	}
	r.clients[name] = client
	r.log.WithFields(logrus.Fields{"data_source": name, "dialect": client.Dialect()}).Info("registered backend client")
}

// Get returns the client registered under name, or BackendFailure if none
// was registered — a catalog referencing an unregistered data source is a
// configuration error the coordinator surfaces the same way as any other
// backend failure.
func (r *Registry) Get(name string) (BackendClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[name]
	if !ok {
		return nil, semaerr.ErrBackendFailure.New("no backend client registered for data source " + name)
	}
	return c, nil
}

// Close closes every registered client, continuing past individual errors
// so one misbehaving client can't stop the others from releasing their
// resources. It returns the first error encountered, if any.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for name, c := range r.clients {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
		r.log.WithField("data_source", name).Info("closed backend client")
	}
	r.clients = make(map[string]BackendClient)
	return first
}
