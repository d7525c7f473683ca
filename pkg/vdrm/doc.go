// Package vdrm provides the public API for embedding the vdrm control panel.
// A Viewer loads a Lua configuration, installs a Lua-scripted renderer and
// runs the panel either in a desktop window or headless.
//
// # Basic Usage
//
//	v, err := vdrm.New("/path/to/panel.lua", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer v.Stop()
//
//	if err := v.Start(); err != nil {
//		log.Fatal(err)
//	}
//
// # Configuration Sources
//
//   - Disk file: Use [New] to load from a filesystem path
//   - Embedded FS: Use [NewFromFS] to load from an [io/fs.FS]
//   - io.Reader: Use [NewFromReader] for generated configurations
//
// # Lifecycle Management
//
//   - [Viewer.Start] builds the panel and starts the window or headless loop
//   - [Viewer.Stop] shuts the instance down
//   - [Viewer.Restart] reloads the configuration and starts again
//   - [Viewer.ReloadConfig] applies a changed configuration in place
//
// All methods are safe to call from any goroutine. Work on the panel itself
// is funneled onto the window's update loop, or serialized by a lock when
// headless.
//
// # Snapshots
//
// [Viewer.Snapshot] writes the current canvas as PNG, which with
// Options.Headless renders plots without opening a window:
//
//	v, _ := vdrm.New("panel.lua", &vdrm.Options{Headless: true})
//	v.Start()
//	v.Snapshot(f)
package vdrm
