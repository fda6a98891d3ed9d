// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package events splits a line-oriented text stream into discrete events.
//
// An event starts wherever a user supplied separator pattern matches. There
// is no end-of-event marker: an event extends until the next separator match
// or the end of the stream. The default separator "^." starts a new event on
// every non-empty line, producing single-line events.
//
// Lines end at "\n", "\r\n" or a lone "\r". The Segmenter reads one
// physical line at a time and never holds more than the event currently
// being built, so arbitrarily large inputs can be processed:
//
//	seg, err := events.NewSegmenter(file, `^\d{4}-\d{2}-\d{2}`)
//	if err != nil {
//	    return err // *events.PatternError
//	}
//	for seg.Next() {
//	    fmt.Println(seg.Record())
//	}
//	if err := seg.Err(); err != nil {
//	    return err // *events.IOError
//	}
//
// Each emitted record has exactly one trailing line terminator removed, see
// Chomp. All other whitespace is preserved.
package events
