package report

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind describes what happened to a report file.
type ChangeKind int

const (
	ChangeAdded   ChangeKind = iota // report file appeared
	ChangeRemoved                   // report file vanished
)

// Change is emitted after the model has been updated.
type Change struct {
	Kind ChangeKind
	Name string
}

// Watcher keeps a Model in sync with the logs folder using fsnotify.
// It needs the operating system file system.
type Watcher struct {
	Changes <-chan Change

	model   *Model
	changes chan Change
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for the folder of m.
func NewWatcher(m *Model) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ch := make(chan Change, 16)
	return &Watcher{
		Changes: ch,
		model:   m,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}, nil
}

// Start begins watching the logs folder.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.model.Dir()); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: the runner may create then write the report in bursts.
	const debounce = 100 * time.Millisecond
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				for file := range pending {
					w.apply(file)
				}
				return
			}
			if !IsReport(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) >= debounce {
					w.apply(file)
					delete(pending, file)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.model.log.Warn().Err(err).Msg("report watcher error")
		}
	}
}

// apply updates the model from the current presence of file.
func (w *Watcher) apply(file string) {
	name := filepath.Base(file)
	if _, err := w.model.fs.Stat(file); err != nil {
		if w.model.forget(name) {
			w.emit(Change{Kind: ChangeRemoved, Name: name})
		}
		return
	}
	for _, n := range w.model.Names() {
		if n == name {
			return
		}
	}
	w.model.Insert(name)
	w.emit(Change{Kind: ChangeAdded, Name: name})
}

// emit never blocks the loop; a slow reader loses notifications, not
// model updates.
func (w *Watcher) emit(c Change) {
	select {
	case w.changes <- c:
	default:
	}
}
