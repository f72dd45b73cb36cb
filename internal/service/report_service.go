package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"clinic-frontdesk/internal/domain/entity"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SessionReport is the archived form of a closed session
type SessionReport struct {
	ClinicID                   uuid.UUID `json:"clinic_id"`
	DoctorID                   uuid.UUID `json:"doctor_id"`
	SessionName                string    `json:"session_name"`
	ClosedAt                   time.Time `json:"closed_at"`
	TotalPatients              int       `json:"total_patients"`
	Completed                  int       `json:"completed"`
	WaitingAtClose             int       `json:"waiting_at_close"`
	Called                     int       `json:"called"`
	Skipped                    int       `json:"skipped"`
	NoShow                     int       `json:"no_show"`
	AverageWaitSeconds         float64   `json:"average_wait_seconds"`
	AverageConsultationSeconds float64   `json:"average_consultation_seconds"`
	TotalRevenue               string    `json:"total_revenue"`
}

func NewSessionReport(stats entity.SessionStats, closedAt time.Time) SessionReport {
	return SessionReport{
		ClinicID:                   stats.ClinicID,
		DoctorID:                   stats.DoctorID,
		SessionName:                stats.SessionName,
		ClosedAt:                   closedAt,
		TotalPatients:              stats.TotalPatients,
		Completed:                  stats.Completed,
		WaitingAtClose:             stats.WaitingAtClose,
		Called:                     stats.Called,
		Skipped:                    stats.Skipped,
		NoShow:                     stats.NoShow,
		AverageWaitSeconds:         stats.AverageWait.Seconds(),
		AverageConsultationSeconds: stats.AverageConsultation.Seconds(),
		TotalRevenue:               stats.TotalRevenue.String(),
	}
}

type ReportArchiver interface {
	Archive(ctx context.Context, report SessionReport) (string, error)
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3Archiver struct {
	client objectPutter
	bucket string
	log    *logrus.Logger
}

// NewReportArchiver falls back to a no-op archiver when S3 is not configured
func NewReportArchiver(client *s3.Client, bucket string, log *logrus.Logger) ReportArchiver {
	if client == nil || bucket == "" {
		return noopArchiver{}
	}
	return &s3Archiver{client: client, bucket: bucket, log: log}
}

// Archive stores the report and returns its object key
func (a *s3Archiver) Archive(ctx context.Context, report SessionReport) (string, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encode session report: %w", err)
	}

	key := reportKey(report)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		ACL:         s3types.ObjectCannedACLPrivate,
	})
	if err != nil {
		a.log.Warnf("Failed to archive session report %s: %+v", key, err)
		return "", fmt.Errorf("put session report: %w", err)
	}

	a.log.Infof("Session report archived: bucket=%s, key=%s", a.bucket, key)
	return key, nil
}

func reportKey(report SessionReport) string {
	return fmt.Sprintf("sessions/%s/%s/%s/%s.json",
		report.ClinicID, report.DoctorID, report.ClosedAt.UTC().Format("2006-01-02"), url.PathEscape(report.SessionName))
}

type noopArchiver struct{}

func (noopArchiver) Archive(context.Context, SessionReport) (string, error) { return "", nil }
