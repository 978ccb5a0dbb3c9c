// Package listener tracks the host listeners a guest attaches to elements and
// the window.
//
// A registration moves from unregistered to registered on Add or AddWindow
// and back on the matching Remove. Adding on an element that does not
// resolve fails without registering anything, and removing a key that was
// never added fails without side effects.
//
// Keys are plain comparable structs, so a remove call with the same element,
// name, data and callback always finds the entry added earlier. Adding twice
// under one key replaces the first registration and detaches its host
// listener.
package listener
