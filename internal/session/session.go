// Package session implements the duplex line session between two
// peers: a background receive task, a send path driven by local input,
// and a close-once shutdown that either path may trigger.
//
// A Session owns its net.Conn from New until the stream is released.
// Closing the connection is the only cancellation primitive: it
// unblocks a pending read or write, and both paths treat the resulting
// "use of closed connection" as normal termination.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"peerchat/config"
	pcerr "peerchat/internal/errors"
	"peerchat/internal/metrics"
	"peerchat/util"
)

// Options tunes a Session.  The zero value is usable: received lines
// are discarded and the defaults from package config apply.
type Options struct {
	Output      io.Writer // sink for received lines, each as Prefix+line+"\n"
	Prefix      string
	MaxLineSize int      // longest accepted inbound line
	SendRate    float64  // outbound lines per second; 0 disables limiting
	SendBurst   int      // lines allowed in a burst when SendRate > 0
	QuitWords   []string // local control messages, matched case-insensitively
	Logger      *util.Logger
	Metrics     *metrics.Collector
}

// Session is the live, connected exchange with one peer.
type Session struct {
	conn    net.Conn
	peer    string
	opts    Options
	limiter *rate.Limiter

	// life is cancelled on shutdown so waits outside the connection
	// (rate limiting) end with the session.
	life context.Context
	stop context.CancelFunc

	wmu    sync.Mutex // serialises writers
	writer *bufio.Writer

	state     atomic.Int32
	reason    atomic.Int32
	errMu     sync.Mutex
	cause     error
	closeErr  error
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
}

// New wraps an established connection.  The session is Active from
// this point; call Start (or Run) to begin receiving.
func New(conn net.Conn, opts Options) *Session {
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.MaxLineSize <= 0 {
		opts.MaxLineSize = config.DefaultMaxLineSize
	}
	if opts.QuitWords == nil {
		opts.QuitWords = config.QuitWords
	}
	if opts.Logger == nil {
		opts.Logger = util.NewLogger(0)
		opts.Logger.SetOutput(io.Discard)
	}

	s := &Session{
		conn:   conn,
		opts:   opts,
		writer: bufio.NewWriter(conn),
		done:   make(chan struct{}),
	}
	if addr := conn.RemoteAddr(); addr != nil {
		s.peer = addr.String()
	}
	if opts.SendRate > 0 {
		burst := opts.SendBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.SendRate), burst)
	}
	s.life, s.stop = context.WithCancel(context.Background())
	s.state.Store(int32(StateActive))
	opts.Metrics.SessionOpened()
	return s
}

// Start launches the receive task and a watcher that closes the
// session when ctx is cancelled.  Later calls are no-ops.
func (s *Session) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.wg.Add(2)
		go s.receive()
		go s.watch(ctx)
	})
}

// Run drives the session from local input: every line read from in is
// sent to the peer until in is exhausted, a quit word is entered, or
// the session closes for any other reason.  Run returns after the
// stream has been released and the receive task has exited.  Transport
// failures are normal termination and are reported through Reason and
// Err, not as Run's error.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	s.Start(ctx)
	defer s.Wait()

	lines, inErr := s.readInput(in)
	for {
		select {
		case <-s.done:
			return nil
		case line, ok := <-lines:
			if !ok {
				err := <-inErr
				s.shutdown(ReasonInputClosed, nil)
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				return nil
			}
			if s.isQuit(line) {
				s.shutdown(ReasonLocalQuit, nil)
				return nil
			}
			if err := s.Send(ctx, line); err != nil && s.State() == StateActive {
				s.opts.Logger.Warn("message not sent: %v", err)
			}
		}
	}
}

// Send writes text to the peer and flushes immediately.  Each line of
// a multi-line text is sent as its own message.  Send is safe for
// concurrent use.  After shutdown it fails fast with ErrSessionClosed.
func (s *Session) Send(ctx context.Context, text string) error {
	if s.State() != StateActive {
		return pcerr.ErrSessionClosed
	}

	msgs := util.SplitText(text)
	if err := s.throttle(ctx, len(msgs)); err != nil {
		if s.State() != StateActive {
			return pcerr.ErrSessionClosed
		}
		return fmt.Errorf("send: %w", err)
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()

	if s.State() != StateActive {
		return pcerr.ErrSessionClosed
	}
	for _, m := range msgs {
		// bufio.Writer errors are sticky; Flush reports the first one.
		s.writer.WriteString(m)          //nolint:errcheck
		s.writer.WriteString(lineEnding) //nolint:errcheck
	}
	if err := s.writer.Flush(); err != nil {
		if s.State() != StateActive {
			return pcerr.ErrSessionClosed
		}
		werr := pcerr.Wrap("write", s.peer, err)
		s.shutdown(ReasonWriteError, werr)
		return werr
	}
	for _, m := range msgs {
		s.opts.Metrics.MessageSent(len(m))
	}
	return nil
}

// Close releases the stream.  It is safe to call any number of times
// from any goroutine; only the call that performs the release can
// return a release error, and every call returns after the release.
func (s *Session) Close() error {
	if s.shutdown(ReasonLocalQuit, nil) {
		return s.closeErr
	}
	return nil
}

// Wait blocks until the receive task and the context watcher exit.
func (s *Session) Wait() { s.wg.Wait() }

// Done is closed once the session reaches StateClosed.
func (s *Session) Done() <-chan struct{} { return s.done }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Reason returns what ended the session, or ReasonNone while Active.
func (s *Session) Reason() Reason { return Reason(s.reason.Load()) }

// Err returns the transport error behind a ReadError, WriteError or
// reset-by-peer termination, if any.
func (s *Session) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.cause
}

// RemoteAddr returns the peer's address as reported at creation.
func (s *Session) RemoteAddr() string { return s.peer }

// ── internals ────────────────────────────────────────────────────────

// shutdown is the close-once routine.  The Active→Closing transition is
// a single compare-and-swap, so exactly one caller releases the stream;
// every other caller waits for that release and returns false.
func (s *Session) shutdown(reason Reason, cause error) bool {
	if !s.state.CompareAndSwap(int32(StateActive), int32(StateClosing)) {
		<-s.done
		return false
	}

	s.reason.Store(int32(reason))
	s.stop()
	if cause != nil {
		s.errMu.Lock()
		s.cause = cause
		s.errMu.Unlock()
		s.opts.Metrics.RecordError(cause.Error())
	}

	s.opts.Logger.Debug("closing session with %s (%s)", s.peer, reason)
	if err := s.conn.Close(); err != nil && !pcerr.IsClosed(err) {
		s.closeErr = err
		s.opts.Logger.Warn("releasing connection to %s: %v", s.peer, err)
		s.opts.Metrics.RecordError(err.Error())
	}

	s.state.Store(int32(StateClosed))
	s.opts.Metrics.SessionClosed()
	close(s.done)
	return true
}

// throttle reserves n messages from the rate limiter, in chunks no
// larger than its burst.  The wait ends early when ctx is done or the
// session shuts down.
func (s *Session) throttle(ctx context.Context, n int) error {
	if s.limiter == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer context.AfterFunc(s.life, cancel)()

	burst := s.limiter.Burst()
	for n > 0 {
		k := min(n, burst)
		if err := s.limiter.WaitN(ctx, k); err != nil {
			return err
		}
		n -= k
	}
	return nil
}

func (s *Session) receive() {
	defer s.wg.Done()

	sc := util.NewLineScanner(s.conn, s.opts.MaxLineSize)
	defer sc.Release()

	for sc.Scan() {
		if s.State() != StateActive {
			return
		}
		line := sc.Text()
		s.opts.Metrics.MessageReceived(len(line))
		if _, err := fmt.Fprintf(s.opts.Output, "%s%s\n", s.opts.Prefix, line); err != nil {
			s.opts.Logger.Warn("writing received message: %v", err)
		}
	}

	err := sc.Err()
	switch {
	case s.State() != StateActive:
		// We released the stream ourselves; the read failed because of it.
	case err == nil:
		s.shutdown(ReasonPeerHangup, nil)
	case pcerr.IsClosed(err):
		s.shutdown(ReasonPeerHangup, pcerr.Wrap("read", s.peer, err))
	default:
		s.shutdown(ReasonReadError, pcerr.Wrap("read", s.peer, err))
	}
}

func (s *Session) watch(ctx context.Context) {
	defer s.wg.Done()
	select {
	case <-ctx.Done():
		s.shutdown(ReasonCancelled, nil)
	case <-s.done:
	}
}

// readInput scans local input on its own goroutine so the send loop can
// also watch for shutdown.  The goroutine is not joined: a read from a
// terminal cannot be interrupted, and it exits on the next line or EOF.
func (s *Session) readInput(in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		sc := util.NewLineScanner(in, s.opts.MaxLineSize)
		defer sc.Release()

		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-s.done:
				errc <- nil
				return
			}
		}
		errc <- sc.Err()
	}()

	return lines, errc
}

func (s *Session) isQuit(line string) bool {
	word := strings.TrimSpace(line)
	for _, q := range s.opts.QuitWords {
		if strings.EqualFold(word, q) {
			return true
		}
	}
	return false
}
