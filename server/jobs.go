package server

import (
	"github.com/raksha-app/raksha/server/gstorage"
	"github.com/raksha-app/raksha/server/models"
	"github.com/raksha-app/raksha/server/work"
)

const backupSqliteDbJob = "backupSqliteDb"

func registerJobHandlers(workerPool *work.WorkerPoolAdapter, rootDir string) {
	fatalOnError(workerPool.Register(backupSqliteDbJob, backupSqliteDbHandler(rootDir)))
}

func enqueueJobs(workerPool *work.WorkerPoolAdapter) {
	if !sqliteBackupEnabled() {
		logg.Info("Sqlite backup & sync is disabled")
		return
	}

	err := workerPool.PeriodicallyPerform(appConfig.Google.Storage.SqliteBackupSchedule, work.JobParams{
		Name:    backupSqliteDbJob,
		Handler: backupSqliteDbJob,
		Args:    map[string]interface{}{},
	})
	fatalOnError(err)
}

// backupSqliteDbHandler uploads the encrypted sqlite file to the configured
// cloud bucket.
func backupSqliteDbHandler(rootDir string) work.Handler {
	return func(map[string]interface{}) error {
		dbFilePath, err := models.DbFilePath(rootDir)
		if err != nil {
			return err
		}

		gs, err := gstorage.NewGStorage(appConfig.Google.ApplicationCredentials)
		if err != nil {
			return err
		}

		return gs.UploadFile(appConfig.Google.Storage.Bucket, appConfig.Google.Storage.Prefix, dbFilePath)
	}
}

func sqliteBackupEnabled() bool {
	enabled, ok := appConfig.Google.Storage.EnableSqliteBackupAndSync.(bool)
	return ok && enabled
}
