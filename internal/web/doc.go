// Package web hosts the control panel in a browser. Document wraps the page
// DOM, with elements looked up by id, and Chart adapts the JavaScript
// plotting module to chart.Renderer. Everything here needs GOOS=js
// GOARCH=wasm.
package web
