package main

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"go.uber.org/zap"
)

// fileChanged is posted to the UI loop when the open file changes on disk.
type fileChanged struct {
	tcell.EventTime
	path string
}

// fileWatcher polls one file and forwards writes to the screen's event
// queue, so reloading happens on the UI goroutine.
type fileWatcher struct {
	w   *watcher.Watcher
	log *zap.Logger
}

func watchFile(screen tcell.Screen, path string, interval time.Duration, log *zap.Logger) (*fileWatcher, error) {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write)

	if err := w.Add(path); err != nil {
		return nil, errors.Wrapf(err, "watch %s", path)
	}

	fw := &fileWatcher{w: w, log: log}
	go func() {
		for {
			select {
			case event := <-w.Event:
				log.Debug("file watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))
				ev := &fileChanged{path: path}
				ev.SetEventNow()
				_ = screen.PostEvent(ev)
			case err := <-w.Error:
				log.Error("file watcher error", zap.Error(err))
			case <-w.Closed:
				return
			}
		}
	}()

	go func() {
		if err := w.Start(interval); err != nil {
			log.Error("file watcher start error", zap.Error(err))
		}
	}()
	return fw, nil
}

func (fw *fileWatcher) Close() {
	if fw == nil {
		return
	}
	fw.w.Close()
}
