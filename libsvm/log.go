package libsvm

import (
	"math/rand"

	"github.com/rs/zerolog"

	svmlog "limhan.info/libsvm-go/logger"
)

var logger = svmlog.NewLogger("libsvm")

var random = rand.New(rand.NewSource(0))

// SetLogger replaces the package logger; zerolog.Nop() silences training output
func SetLogger(l zerolog.Logger) {
	logger = l
}

// SetSeed reseeds the random source used for fold assignment
func SetSeed(seed int64) {
	random = rand.New(rand.NewSource(seed))
}
