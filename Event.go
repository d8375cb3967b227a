/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package ina

import (
	"fmt"
	"time"
)

const (
	EvtSuffixArrayStart = 0 // Suffix array construction starts
	EvtSuffixArrayEnd   = 1 // Suffix array construction ends
	EvtDiffStart        = 2 // Diff production starts
	EvtDiffEnd          = 3 // Diff production ends
	EvtControlEmitted   = 4 // One control triple was emitted
	EvtPatchStart       = 5 // Patch application starts
	EvtPatchEnd         = 6 // Patch application ends
)

// Event describes a point in the diff or patch lifecycle; listeners use it
// to report progress without the producer knowing how (or whether) that
// progress is displayed.
type Event struct {
	eventType int
	size      int64
	eventTime time.Time
	msg       string
}

// NewEventFromString creates an Event that just wraps a message.
func NewEventFromString(evtType int, msg string, evtTime time.Time) *Event {
	if evtTime.IsZero() {
		evtTime = time.Now()
	}

	return &Event{eventType: evtType, msg: msg, eventTime: evtTime}
}

// NewEvent creates an Event carrying a byte count (e.g. bytes scanned so
// far, or the size of an emitted control).
func NewEvent(evtType int, size int64, evtTime time.Time) *Event {
	if evtTime.IsZero() {
		evtTime = time.Now()
	}

	return &Event{eventType: evtType, size: size, eventTime: evtTime}
}

// Type returns the event type.
func (this *Event) Type() int {
	return this.eventType
}

// Time returns when the event was created.
func (this *Event) Time() time.Time {
	return this.eventTime
}

// Size returns the byte count carried by the event, if any.
func (this *Event) Size() int64 {
	return this.size
}

// String returns a human-readable representation of the event.
func (this *Event) String() string {
	if len(this.msg) > 0 {
		return this.msg
	}

	t := ""

	switch this.eventType {
	case EvtSuffixArrayStart:
		t = "SUFFIX_ARRAY_START"
	case EvtSuffixArrayEnd:
		t = "SUFFIX_ARRAY_END"
	case EvtDiffStart:
		t = "DIFF_START"
	case EvtDiffEnd:
		t = "DIFF_END"
	case EvtControlEmitted:
		t = "CONTROL_EMITTED"
	case EvtPatchStart:
		t = "PATCH_START"
	case EvtPatchEnd:
		t = "PATCH_END"
	}

	return fmt.Sprintf("{ \"type\":\"%s\", \"size\":%d, \"time\":%d }", t, this.size,
		this.eventTime.UnixNano()/1000000)
}

// Listener is implemented by event processors (e.g. a verbose CLI printer).
type Listener interface {
	// ProcessEvent is called whenever a Listener receives an event.
	ProcessEvent(evt *Event)
}
