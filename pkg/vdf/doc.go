// Package vdf parses Valve's nested key-value text format (VDF/KeyValues)
// as used by Steam's library configuration and app manifest files.
//
// A parsed document is a tree of Nodes. Sibling nodes may repeat the same
// name; the order of appearance is preserved and lookups return the first
// match, which mirrors how Steam itself reads these files.
package vdf
