package testutil

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/polydawn/ustar/caps"
)

type ConveyRequirement struct {
	Name      string
	Predicate func() bool
}

/*
	Require that the tests are not running with the "short" flag enabled.
*/
var RequiresLongRun = ConveyRequirement{"run long tests", func() bool { return !testing.Short() }}

/*
	Require that the test process can chown files it extracts.
*/
var RequiresCanManageOwnership = ConveyRequirement{"have caps for managing file ownership", func() bool {
	f, err := caps.Scan()
	return err == nil && f.CanManageOwnership()
}}

/*
	Require that an env var *not* be set.
*/
func RequiresEnvBlank(key string) ConveyRequirement {
	return ConveyRequirement{
		fmt.Sprintf("env %q must not be set", key),
		func() bool { return os.Getenv(key) == "" },
	}
}

/*
	Decorates a GoConvey test with a set of `ConveyRequirement`s.
	If they're all satisfied, the test func runs unchanged; otherwise a
	placeholder runs instead, which reports the requirements and skips.
	Requirements come first and the func last, like the arguments to `Convey`.
*/
func Requires(items ...interface{}) func(c convey.C) {
	var requirements []ConveyRequirement
	for _, it := range items[:len(items)-1] {
		requirements = append(requirements, it.(ConveyRequirement))
	}
	action := items[len(items)-1]

	var listing bytes.Buffer
	var names []string
	allSat := true
	for _, req := range requirements {
		sat := req.Predicate()
		allSat = allSat && sat
		names = append(names, req.Name)
		fmt.Fprintf(&listing, "requirement %q: %v\n", req.Name, sat)
	}
	if !allSat {
		title := "Prereqs: " + strings.Join(names, ", ")
		return func(c convey.C) {
			convey.Convey(title, nil)
			c.Println()
			c.Print(listing.String())
		}
	}
	return func(c convey.C) {
		switch action := action.(type) {
		case func():
			action()
		case func(c convey.C):
			action(c)
		}
	}
}
