package watch

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type WatcherObj struct {
	stopChan chan struct{}
	stopWG   *sync.WaitGroup
	iface    string
	allMulti bool
	onReport func(*Report)
}

// NewWatcher
//
// iface - The interface to listen on for Neighbor Discovery messages
//
// allMulti - Put the interface into all-multicast mode so that Router Solicitations are seen as well
//
// onReport - Optional (can be nil) callback invoked for every decoded message, in arrival order
//
// Start() must be called on the object to actually start watching
func NewWatcher(iface string, allMulti bool, onReport func(*Report)) *WatcherObj {
	checkIsValidNetworkInterfaceFatal(iface)

	var s sync.WaitGroup
	return &WatcherObj{
		stopChan: make(chan struct{}),
		stopWG:   &s,
		iface:    iface,
		allMulti: allMulti,
		onReport: onReport,
	}
}

func (obj *WatcherObj) Start() {
	obj.stopWG.Add(2)
	reports := make(chan *Report, 100)
	go listen(obj.iface, obj.allMulti, reports, obj.stopWG, obj.stopChan)
	go obj.consume(reports)
	fmt.Printf("Started watcher instance on interface %s", obj.iface)
	fmt.Println()
}

func (obj *WatcherObj) consume(reports <-chan *Report) {
	defer obj.stopWG.Done()
	for {
		select {
		case <-obj.stopChan:
			return
		case r := <-reports:
			slog.Info("NDP message", "interface", r.Interface, "report", r)
			if obj.onReport != nil {
				obj.onReport(r)
			}
		}
	}
}

// Stop a running Watcher instance
// Returns false on error
func (obj *WatcherObj) Stop() bool {
	close(obj.stopChan)
	fmt.Println("Shutting down watcher instance..")
	if wgWaitTimout(obj.stopWG, 10*time.Second) {
		fmt.Println("Done")
		return true
	} else {
		fmt.Println("Error shutting down instance")
		return false
	}
}

func wgWaitTimout(wg *sync.WaitGroup, timeout time.Duration) bool {
	t := make(chan struct{})
	go func() {
		defer close(t)
		wg.Wait()
	}()
	select {
	case <-t:
		return true
	case <-time.After(timeout):
		return false
	}
}
