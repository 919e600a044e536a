// Package fileserver is the filesystem leaf: it serves the file that the
// routed remainder names under a root directory.
package fileserver
