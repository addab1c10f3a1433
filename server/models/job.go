package models

import (
	"errors"

	"gorm.io/gorm"
)

var ErrDuplicateJob = errors.New("job with the given name already exists in queue")

type Job struct {
	BaseModel
	Fails       int        `json:"fails"`
	Name        string     `json:"name"`
	Handler     string     `json:"handler"`
	Args        string     `json:"args"`
	LastError   string     `json:"last_error"`
	Claimed     bool       `json:"claimed" gorm:"default:false"`
	JobStatusID uint       `json:"job_status_id"`
	JobStatus   *JobStatus `json:"status"`
}

// MarkAsClaimed flips the job to claimed & in-progress, returning false if
// another worker got to it first.
func (job *Job) MarkAsClaimed() (bool, error) {
	inProgressStatus := JobStatus{}
	err := db.Where(&JobStatus{Name: IN_PROGRESS_JOB}).Find(&inProgressStatus).Error
	if err != nil {
		return false, err
	}

	res := db.Model(&Job{}).Where("id = ? AND claimed = ?", job.ID, false).Updates(map[string]interface{}{
		"claimed":       true,
		"job_status_id": inProgressStatus.ID,
	})

	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (job *Job) Update(data map[string]interface{}) error {
	return db.Model(job).Updates(data).Error
}

// CreateUniqueJobByName enqueues a job unless one with the same name is
// already enqueued or in-progress.
func CreateUniqueJobByName(name string, handler string, args string) error {
	queuedJobStatuses := []JobStatus{}
	err := db.Where("name IN ('enqueued', 'in-progress')").Find(&queuedJobStatuses).Error
	if err != nil {
		return err
	}

	statusIDs := []uint{}
	var enqueuedJobStatus JobStatus
	for _, jobStatus := range queuedJobStatuses {
		statusIDs = append(statusIDs, jobStatus.ID)
		if jobStatus.Name == ENQUEUED_JOB {
			enqueuedJobStatus = jobStatus
		}
	}

	results := db.Where("name = ? AND job_status_id IN ?", name, statusIDs).First(&Job{})
	if results.Error != nil && !errors.Is(results.Error, gorm.ErrRecordNotFound) {
		return results.Error
	}

	if results.RowsAffected > 0 {
		return ErrDuplicateJob
	}

	return db.Create(&Job{
		Name:        name,
		Handler:     handler,
		Args:        args,
		JobStatusID: enqueuedJobStatus.ID,
	}).Error
}

// LastJob returns the most recent job with the given status & claim state.
func LastJob(status string, claimed bool) (*Job, error) {
	job := Job{}
	err := db.Joins("INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id AND job_statuses.name = ? AND claimed = ?",
		status, claimed).Last(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}
