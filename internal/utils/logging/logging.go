package logging

import "github.com/sirupsen/logrus"

var (
	logger *logrus.Entry
)

func SetLevel(l logrus.Level) {
	logger.Logger.SetLevel(l)
}

func init() {
	if logger == nil {
		l := logrus.New()
		l.AddHook(NewRedactHook())
		logger = logrus.NewEntry(l)
	}
}

func WithError(e error) *logrus.Entry {
	return logger.WithError(e)
}

func WithField(key string, value interface{}) *logrus.Entry {
	return logger.WithField(key, value)
}

func Entry() *logrus.Entry {
	return logger
}
