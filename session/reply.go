package session

import (
	"context"
	"fmt"
	"time"

	osc "github.com/hypebeast/go-osc/osc"

	"github.com/nanosynth/nanosynth/wire"
)

// onReplyDatagram is the Engine's reply callback. It demultiplexes by
// address: every persistent subscriber is invoked, and the oldest
// matching one-shot waiter (if any) is completed and removed. Panics
// from a subscriber are recovered so a faulty caller can never bring
// down the Engine's reply path.
func (s *Session) onReplyDatagram(data []byte) {
	reply, err := wire.ParseReply(data)
	if err != nil {
		s.logger.Printf("dropping malformed reply datagram: %v", err)
		return
	}

	s.subMu.Lock()
	subs := append([]func(wire.Reply){}, s.subscribers[reply.Address]...)
	var waiter chan wire.Reply
	if queue := s.waiters[reply.Address]; len(queue) > 0 {
		waiter = queue[0]
		s.waiters[reply.Address] = queue[1:]
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		s.invokeSubscriber(fn, reply)
	}
	if waiter != nil {
		waiter <- reply
		close(waiter)
	}
}

func (s *Session) invokeSubscriber(fn func(wire.Reply), reply wire.Reply) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("reply subscriber for %s panicked: %v", reply.Address, r)
		}
	}()
	fn(reply)
}

func (s *Session) onPrintLine(line string) {
	s.logger.Printf("[engine] %s", line)
}

// On registers a persistent subscriber for address. It is invoked for
// every matching reply until removed with Off.
func (s *Session) On(address string, fn func(wire.Reply)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers[address] = append(s.subscribers[address], fn)
}

// Off removes every subscriber registered with On for address. Go
// function values cannot be compared, so a single subscriber cannot be
// removed on its own; callers needing selective removal should use a
// closure flag instead.
func (s *Session) Off(address string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	delete(s.subscribers, address)
}

// ErrWaitTimeout is returned by WaitForReply and SendMsgSync when no
// matching reply arrives before the deadline.
var ErrWaitTimeout = fmt.Errorf("session: timed out waiting for reply")

// WaitForReply blocks until a reply matching address arrives or timeout
// elapses, returning ErrWaitTimeout on expiry. The waiter is removed from
// the queue in either case.
func (s *Session) WaitForReply(address string, timeout time.Duration) (wire.Reply, error) {
	ch := make(chan wire.Reply, 1)
	s.subMu.Lock()
	s.waiters[address] = append(s.waiters[address], ch)
	s.subMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case reply := <-ch:
		return reply, nil
	case <-ctx.Done():
		s.removeWaiter(address, ch)
		return wire.Reply{}, ErrWaitTimeout
	}
}

func (s *Session) removeWaiter(address string, ch chan wire.Reply) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	queue := s.waiters[address]
	for i, w := range queue {
		if w == ch {
			s.waiters[address] = append(queue[:i], queue[i+1:]...)
			return
		}
	}
}

// SendMsgSync atomically registers a waiter for replyAddress, sends msg,
// and blocks for the first matching reply (or timeout).
func (s *Session) SendMsgSync(m *osc.Message, replyAddress string, timeout time.Duration) (wire.Reply, error) {
	ch := make(chan wire.Reply, 1)
	s.subMu.Lock()
	s.waiters[replyAddress] = append(s.waiters[replyAddress], ch)
	s.subMu.Unlock()

	if err := s.send(m); err != nil {
		s.removeWaiter(replyAddress, ch)
		return wire.Reply{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	select {
	case reply := <-ch:
		return reply, nil
	case <-ctx.Done():
		s.removeWaiter(replyAddress, ch)
		return wire.Reply{}, ErrWaitTimeout
	}
}
