// Copyright © 2025 The Gomon Project.

package main

import (
	"testing"
	"time"

	"go.viam.com/test"
)

func TestIntervalSet(t *testing.T) {
	var i interval

	test.That(t, i.Set("2s"), test.ShouldBeNil)
	test.That(t, time.Duration(i), test.ShouldEqual, 2*time.Second)

	// the original utility accepted a bare count of seconds
	test.That(t, i.Set("0.5"), test.ShouldBeNil)
	test.That(t, time.Duration(i), test.ShouldEqual, 500*time.Millisecond)
	test.That(t, i.String(), test.ShouldEqual, "500ms")

	test.That(t, i.Set("0"), test.ShouldNotBeNil)
	test.That(t, i.Set("-3s"), test.ShouldNotBeNil)
	test.That(t, i.Set("bogus"), test.ShouldNotBeNil)

	// rejected values leave the interval unchanged
	test.That(t, time.Duration(i), test.ShouldEqual, 500*time.Millisecond)
}

func TestSplitCommand(t *testing.T) {
	for _, tc := range []struct {
		args    []string
		flags   []string
		command []string
	}{
		{ // a flag value is not the start of the command
			args:    []string{"-interval", "0.2", "/bin/sleep", "1"},
			flags:   []string{"-interval", "0.2"},
			command: []string{"/bin/sleep", "1"},
		},
		{ // the target's own flags belong to the target
			args:    []string{"-output", "-", "du", "-sh"},
			flags:   []string{"-output", "-"},
			command: []string{"du", "-sh"},
		},
		{ // boolean and name=value forms take no separate value
			args:    []string{"-verbose", "-output=out.db", "work.sh", "-interval"},
			flags:   []string{"-verbose", "-output=out.db"},
			command: []string{"work.sh", "-interval"},
		},
		{ // "--" forces the split, even for dash prefixed targets
			args:    []string{"--", "-odd-name"},
			flags:   []string{},
			command: []string{"-odd-name"},
		},
		{ // unrecognized flags stay with the flags for the parser to report
			args:    []string{"-bogus", "top"},
			flags:   []string{"-bogus"},
			command: []string{"top"},
		},
		{ // no command at all
			args:    []string{"-interval", "5s"},
			flags:   []string{"-interval", "5s"},
			command: nil,
		},
		{
			args:    []string{"top"},
			flags:   []string{},
			command: []string{"top"},
		},
	} {
		flagArgs, command := splitCommand(tc.args)
		test.That(t, flagArgs, test.ShouldResemble, tc.flags)
		test.That(t, command, test.ShouldResemble, tc.command)
	}
}
