package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/systems"
)

var (
	ErrAssetNotFound  = errors.New("asset not found")
	ErrManagerClosed  = errors.New("asset manager already closed")
	ErrWrongAssetType = errors.New("asset has the wrong type")
)

type AssetType int

const (
	AssetTypeNone AssetType = iota
	AssetTypePrefab
	AssetTypeData
	AssetTypeManifest
)

func (t AssetType) String() string {
	switch t {
	case AssetTypePrefab:
		return "prefab"
	case AssetTypeData:
		return "data"
	case AssetTypeManifest:
		return "manifest"
	default:
		return "none"
	}
}

type ChangeOp int

const (
	ChangeCreated ChangeOp = iota
	ChangeModified
	ChangeRemoved
)

func (op ChangeOp) String() string {
	switch op {
	case ChangeCreated:
		return "created"
	case ChangeModified:
		return "modified"
	default:
		return "removed"
	}
}

// AssetInfo describes one indexed file. Address is the slash separated path
// relative to the asset root; references use it.
type AssetInfo struct {
	Address string
	Path    string
	Type    AssetType
	ModTime time.Time
}

type ChangeHandler func(info AssetInfo, op ChangeOp)

// AssetManager indexes the asset directory and keeps the index current with
// fsnotify. Change handlers run on the control goroutine through poster.
type AssetManager struct {
	root   string
	assets map[string]AssetInfo
	mutex  sync.RWMutex

	poster   systems.Poster
	handlers []ChangeHandler

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager(poster systems.Poster) *AssetManager {
	return &AssetManager{
		assets: make(map[string]AssetInfo),
		poster: poster,
		done:   make(chan struct{}),
	}
}

// Initialize indexes dir and, when watch is set, starts following changes.
func (am *AssetManager) Initialize(dir string, watch bool) error {
	root, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	am.root = root

	if watch {
		fsWatch, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		am.fsnotify = fsWatch
		am.stopped = make(chan struct{})
		go am.start()
	}

	if err := am.watchRecursive(root); err != nil {
		return err
	}
	core.LogInfo("asset manager indexed %d assets under '%s' (watch=%t)", am.Count(), root, watch)
	return nil
}

// OnChange registers h. Handlers run in registration order.
func (am *AssetManager) OnChange(h ChangeHandler) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.handlers = append(am.handlers, h)
}

func (am *AssetManager) Root() string {
	return am.root
}

func (am *AssetManager) Lookup(address string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[address]
	return info, ok
}

// Resolve looks address up and falls back to the file system for assets
// added while nothing was watching.
func (am *AssetManager) Resolve(address string) (AssetInfo, error) {
	if info, ok := am.Lookup(address); ok {
		return info, nil
	}
	path := filepath.Join(am.root, filepath.FromSlash(address))
	s, err := os.Stat(path)
	if err != nil || s.IsDir() {
		return AssetInfo{}, fmt.Errorf("%w: %s", ErrAssetNotFound, address)
	}
	info, ok := am.index(path)
	if !ok {
		return AssetInfo{}, fmt.Errorf("%w: %s is not a known asset type", ErrAssetNotFound, address)
	}
	return info, nil
}

func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	if am.stopped != nil {
		<-am.stopped
	}
	return nil
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %v", err)

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s != nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			if err := am.watchRecursive(e.Name); err != nil {
				core.LogWarn("asset watcher: %v", err)
			}
		}
		return
	}
	switch {
	case e.Op&fsnotify.Create != 0:
		am.notify(e.Name, ChangeCreated)
	case e.Op&fsnotify.Write != 0:
		am.notify(e.Name, ChangeModified)
	case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// Can't stat a deleted path, so it might have been a directory; try
		// to drop it from the watch list as well.
		if info, ok := am.removeAsset(e.Name); ok {
			am.post(info, ChangeRemoved)
		}
		_ = am.fsnotify.Remove(e.Name)
	}
}

func (am *AssetManager) notify(path string, op ChangeOp) {
	info, ok := am.index(path)
	if !ok {
		return
	}
	am.post(info, op)
}

func (am *AssetManager) post(info AssetInfo, op ChangeOp) {
	am.mutex.RLock()
	handlers := append([]ChangeHandler(nil), am.handlers...)
	am.mutex.RUnlock()
	if am.poster == nil || len(handlers) == 0 {
		return
	}
	am.poster.Post(func() {
		for _, h := range handlers {
			h(info, op)
		}
	})
}

// watchRecursive indexes every file under path and adds all directories to
// the watch list.
func (am *AssetManager) watchRecursive(path string) error {
	select {
	case <-am.done:
		return ErrManagerClosed
	default:
	}
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if am.fsnotify == nil {
				return nil
			}
			return am.fsnotify.Add(walkPath)
		}
		am.index(walkPath)
		return nil
	})
}

func (am *AssetManager) address(path string) (string, bool) {
	rel, err := filepath.Rel(am.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// index records a file if its type is known.
func (am *AssetManager) index(path string) (AssetInfo, bool) {
	assetType := determineAssetType(path)
	if assetType == AssetTypeNone {
		return AssetInfo{}, false
	}
	addr, ok := am.address(path)
	if !ok {
		return AssetInfo{}, false
	}
	info := AssetInfo{
		Address: addr,
		Path:    path,
		Type:    assetType,
		ModTime: time.Now(),
	}
	if s, err := os.Stat(path); err == nil {
		info.ModTime = s.ModTime()
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[addr] = info
	return info, true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) (AssetInfo, bool) {
	addr, ok := am.address(path)
	if !ok {
		return AssetInfo{}, false
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	info, ok := am.assets[addr]
	delete(am.assets, addr)
	return info, ok
}

func determineAssetType(path string) AssetType {
	name := filepath.Base(path)
	switch {
	case strings.HasSuffix(name, ".prefab.toml"):
		return AssetTypePrefab
	case strings.HasSuffix(name, ".data.toml"):
		return AssetTypeData
	case strings.HasSuffix(name, ".manifest.toml"):
		return AssetTypeManifest
	default:
		return AssetTypeNone
	}
}
