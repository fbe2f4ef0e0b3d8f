package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/todozi/todozi/internal/apperror"
)

func apperrorKindOf(err error) apperror.Kind {
	return apperror.KindOf(err)
}

func exitCodeOf(err error) int {
	return apperror.ExitCode(apperror.KindOf(err))
}

func secondsToDuration(secs int) time.Duration {
	return time.Duration(secs) * time.Second
}

// printJSON writes v to stdout as indented JSON, the CLI's default output
// format for structured results.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func fatalIf(err error) {
	if err != nil {
		exitWithError(err)
	}
}
