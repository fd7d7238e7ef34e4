package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gptankit/rawserve/errorlog"
	"github.com/gptankit/rawserve/model"
)

func getListener(sqp *model.ServerProperties) (net.Listener, error) {

	transport := "tcp"
	addr := ":" + sqp.ListenerPort

	return newListener(transport, addr, applyInterruptHook(syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT))
}

func newListener(transport string, addr string, options ...func(net.Listener) error) (net.Listener, error) {

	listener, err := net.Listen(transport, addr)
	if err != nil {
		return listener, err
	}

	for _, option := range options {
		err = option(listener)
		if err != nil {
			listener.Close()
			return nil, err // further options won't be executed
		}
	}

	return listener, nil
}

// applyInterruptHook closes the listener on any of the given signals, which
// ends the accept loop.
func applyInterruptHook(signals ...os.Signal) func(net.Listener) error {

	return func(l net.Listener) error {

		csig := make(chan os.Signal, 1)
		signal.Notify(csig, signals...)
		go hookInterrupt(csig, l)
		return nil
	}
}

func hookInterrupt(csig chan os.Signal, l net.Listener) {

	s := <-csig
	signal.Stop(csig)
	errorlog.LogInfo("received %s, closing listener on %s", s, l.Addr())
	l.Close()
}
