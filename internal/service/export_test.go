package service

import "time"

// SetNowFunc overrides the clock used for export filenames.
func SetNowFunc(s QualificationService, now func() time.Time) {
	s.(*qualificationService).nowFunc = now
}
