package config

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"streeteye-be/apperr"
)

// ConnState is the shared lifecycle state of the MongoDB connection.
type ConnState int32

const (
	Disconnected ConnState = iota
	Connecting
	Connected
	Disconnecting
)

func (s ConnState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnecting:
		return "disconnecting"
	default:
		return "disconnected"
	}
}

const (
	startupConnectTimeout = 5 * time.Second
	serverSelectTimeout   = 5 * time.Second
	socketTimeout         = 10 * time.Second
	ensureTimeout         = 2 * time.Second
	opTimeout             = 3 * time.Second
)

// Database owns the single shared MongoDB connection. A failed startup
// connect leaves the process running in degraded mode; handlers call
// Ensure before touching storage and fail fast when it cannot recover.
type Database struct {
	uri  string
	name string

	state atomic.Int32

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

func NewDatabase(uri, name string) *Database {
	return &Database{uri: uri, name: name}
}

// NewDatabaseWithClient wraps an already-connected client whose lifecycle
// the caller owns. Tests use this with the driver's mock deployment.
func NewDatabaseWithClient(client *mongo.Client, name string) *Database {
	d := &Database{name: name, client: client, db: client.Database(name)}
	d.state.Store(int32(Connected))
	return d
}

// State reports the current connection state. Callers must re-read it per
// request; the state can change asynchronously at any time.
func (d *Database) State() ConnState {
	return ConnState(d.state.Load())
}

// Connect attempts the initial connection with a bounded overall deadline.
// An error here is not fatal to the process.
func (d *Database) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, startupConnectTimeout)
	defer cancel()
	return d.connect(ctx)
}

// Ensure returns nil when the connection is ready, otherwise it makes one
// fast reconnect attempt and reports Unavailable instead of hanging.
func (d *Database) Ensure(ctx context.Context) error {
	if d.State() == Connected {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, ensureTimeout)
	defer cancel()
	if err := d.connect(ctx); err != nil {
		return apperr.UnavailableError(err)
	}
	return nil
}

func (d *Database) connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.State() == Connected {
		return nil
	}

	d.state.Store(int32(Connecting))

	if d.client == nil {
		opts := options.Client().
			ApplyURI(d.uri).
			SetServerSelectionTimeout(serverSelectTimeout).
			SetSocketTimeout(socketTimeout).
			SetConnectTimeout(startupConnectTimeout)

		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			d.state.Store(int32(Disconnected))
			return err
		}
		d.client = client
		d.db = client.Database(d.name)
	}

	// mongo.Connect does not dial eagerly; the ping is what proves the
	// server is actually reachable.
	if err := d.client.Ping(ctx, readpref.Primary()); err != nil {
		d.state.Store(int32(Disconnected))
		return err
	}

	d.state.Store(int32(Connected))
	log.WithField("database", d.name).Info("mongodb connected")
	return nil
}

// MarkDown flips the state back to disconnected after an operation shows
// the server is gone, so the next request re-checks instead of assuming.
func (d *Database) MarkDown() {
	d.state.CompareAndSwap(int32(Connected), int32(Disconnected))
}

func (d *Database) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client == nil {
		return nil
	}
	d.state.Store(int32(Disconnecting))
	err := d.client.Disconnect(ctx)
	d.state.Store(int32(Disconnected))
	d.client = nil
	d.db = nil
	return err
}

// Collection returns a handle on the named collection. Valid only after a
// successful connect.
func (d *Database) Collection(name string) *mongo.Collection {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return nil
	}
	return d.db.Collection(name)
}

// OpContext bounds a single storage operation so a slow or mid-reconnect
// store surfaces as a typed timeout instead of a hung request.
func (d *Database) OpContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, opTimeout)
}
