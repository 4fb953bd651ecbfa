// Package fileops provides the small set of file utilities shared by the
// repocheck internals: path safety validation, identifier sanitization for
// tool names, and markdown discovery for custom check definitions.
//
// These helpers deliberately stay free of repocheck domain types so they can
// be reused by any caller dealing with untrusted paths or file content.
package fileops
