package application

import "expvar"

// Exposed on /api/debug/vars.
var (
	metricLoginSuccess   = expvar.NewInt("board_login_success_total")
	metricLoginFailure   = expvar.NewInt("board_login_failure_total")
	metricRegistrations  = expvar.NewInt("board_registrations_total")
	metricFilesStored    = expvar.NewInt("board_files_stored_total")
	metricUploadFailures = expvar.NewInt("board_upload_failures_total")
	metricPostsWritten   = expvar.NewInt("board_posts_written_total")
)
