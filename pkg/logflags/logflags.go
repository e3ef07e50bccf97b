package logflags

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

var thread = false
var hwbp = false
var native = false
var cli = false

var logOut io.WriteCloser

func makeLogger(level logrus.Level, fields Fields) Logger {
	if lf := loggerFactory; lf != nil {
		return lf(level, fields, logOut)
	}
	logger := logrus.New().WithFields(logrus.Fields(fields))
	logger.Logger.Formatter = textFormatterInstance
	if logOut != nil {
		logger.Logger.Out = logOut
	}
	logger.Logger.Level = level
	return &logrusLogger{logger}
}

func makeFlaggableLogger(flag bool, fields Fields) Logger {
	if flag {
		return makeLogger(logrus.DebugLevel, fields)
	}
	return makeLogger(logrus.ErrorLevel, fields)
}

// Thread returns true if suspend/resume and context access should be logged.
func Thread() bool {
	return thread
}

// ThreadLogger returns a logger for the thread package.
func ThreadLogger() Logger {
	return makeFlaggableLogger(thread, Fields{"layer": "thread"})
}

// HWBP returns true if hardware breakpoint slot changes should be logged.
func HWBP() bool {
	return hwbp
}

// HWBPLogger returns a logger for hardware breakpoint management.
func HWBPLogger() Logger {
	return makeFlaggableLogger(hwbp, Fields{"layer": "thread", "kind": "hwbp"})
}

// Native returns true if calls across the OS boundary should be logged.
func Native() bool {
	return native
}

// NativeLogger returns a logger for the native package.
func NativeLogger() Logger {
	return makeFlaggableLogger(native, Fields{"layer": "native"})
}

// CLI returns true if the command line frontend should log.
func CLI() bool {
	return cli
}

// CLILogger returns a logger for the command line frontend.
func CLILogger() Logger {
	return makeFlaggableLogger(cli, Fields{"layer": "cli"})
}

var errLogstrWithoutLog = errors.New("--log-output specified without --log")

// Setup sets the logging flags based on the contents of logstr.
// If logDest is not empty logs will be redirected to the file descriptor or
// file path specified by logDest.
func Setup(logFlag bool, logstr, logDest string) error {
	if logDest != "" {
		n, err := strconv.Atoi(logDest)
		if err == nil {
			logOut = os.NewFile(uintptr(n), "bbthread-logs")
		} else {
			fh, err := os.Create(logDest)
			if err != nil {
				return fmt.Errorf("could not create log file: %v", err)
			}
			logOut = fh
		}
	}
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	if !logFlag {
		log.SetOutput(ioutil.Discard)
		if logstr != "" {
			return errLogstrWithoutLog
		}
		return nil
	}
	if logstr == "" {
		logstr = "thread"
	}
	v := strings.Split(logstr, ",")
	for _, logcmd := range v {
		switch logcmd {
		case "thread":
			thread = true
		case "hwbp":
			hwbp = true
		case "native":
			native = true
		case "cli":
			cli = true
		default:
			fmt.Fprintf(os.Stderr, "Warning: unknown log output value %q, run 'bbthread help log' for usage.\n", logcmd)
		}
	}
	return nil
}

// Close closes the logger output.
func Close() {
	if logOut != nil {
		logOut.Close()
	}
}
