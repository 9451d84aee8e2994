// Package models defines the domain types that flow through the lyric batch pipeline.
//
// Each batch entry moves strictly downstream through these types:
//
//  1. A raw token from the command line or input file
//  2. [Reference] : the classified form of the token (track ID or free text)
//  3. [ResolvedTrack] : a concrete catalog track with display metadata
//  4. [LyricPayload] : primary and translated lyric text for that track
//  5. [Outcome] : the terminal [Status] of the entry and the file written, if any
//
// A [Report] collects one [Outcome] per entry in input order. Search hits are represented by [Candidate].
package models
