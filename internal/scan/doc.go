// Package scan implements the directory aggregation engine behind dux.
//
// It enumerates the immediate children of a root directory and computes an
// aggregate metric (kilobytes on storage, or inode count) for each child,
// walking subtrees in parallel with fastwalk. Unreadable descendants degrade
// to a zero contribution and are collected as warnings; only failure to
// access the root itself is fatal.
package scan
