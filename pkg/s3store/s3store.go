// S3 storage provider. Implements the svk.StorageService interface against an
// S3 bucket so the same lifecycle can be verified against object storage.
// RetrievalMode maps to a single GetObject (Whole) or a ranged multipart
// download through the transfer manager (Chunked).
package s3store

import (
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
	"github.com/storageresearch/svk/pkg/svk"
)

type s3Store struct {
	bucket string
	dir    string
	// The shared session backing every call of a run
	svc        *s3.S3
	uploader   *s3manager.Uploader
	downloader *s3manager.Downloader
	log        svk.Logger
}

// NewService returns a StorageService backed by the named S3 bucket.
// Credentials come from the standard AWS chain.
func NewService(logger svk.Logger, bucket string, region string, artifactDir string) (svk.StorageService, error) {
	if bucket == "" {
		return nil, errors.New("No bucket configured for the s3 provider")
	}

	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create AWS session")
	}

	return &s3Store{
		bucket:     bucket,
		dir:        artifactDir,
		svc:        s3.New(sess),
		uploader:   s3manager.NewUploader(sess),
		downloader: s3manager.NewDownloader(sess),
		log:        logger,
	}, nil
}

func (self *s3Store) Download(mode svk.RetrievalMode, name string) svk.StepOutcome {
	out := svk.StepOutcome{Op: svk.OpDownload, Name: name}
	path := filepath.Join(self.dir, name)

	self.log.Debugf("s3 get s3://%s/%s (mode %s)", self.bucket, name, mode)

	start := time.Now()
	var err error
	if mode == svk.Chunked {
		err = self.rangedDownload(path, name)
	} else {
		err = self.wholeDownload(path, name)
	}
	out.Elapsed = time.Since(start)

	if err != nil {
		out.Status, out.Err = statusOf(err)
		return out
	}
	out.Status = 200
	return out
}

func (self *s3Store) Upload(name string) svk.StepOutcome {
	out := svk.StepOutcome{Op: svk.OpUpload, Name: name}

	f, err := os.Open(filepath.Join(self.dir, name))
	if err != nil {
		out.Err = errors.Wrap(err, "Failed to read artifact "+name)
		return out
	}
	defer f.Close()

	self.log.Debugf("s3 put s3://%s/%s", self.bucket, name)

	start := time.Now()
	_, err = self.uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(self.bucket),
		Key:    aws.String(name),
		Body:   f,
	})
	out.Elapsed = time.Since(start)

	if err != nil {
		out.Status, out.Err = statusOf(err)
		return out
	}
	out.Status = 200
	return out
}

func (self *s3Store) Delete(name string) svk.StepOutcome {
	out := svk.StepOutcome{Op: svk.OpDelete, Name: name}

	self.log.Debugf("s3 delete s3://%s/%s", self.bucket, name)

	start := time.Now()
	_, err := self.svc.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(self.bucket),
		Key:    aws.String(name),
	})
	out.Elapsed = time.Since(start)

	if err != nil {
		out.Status, out.Err = statusOf(err)
		return out
	}
	out.Status = 200
	return out
}

func (self *s3Store) wholeDownload(path, name string) error {
	resp, err := self.svc.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(self.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "Failed to create artifact "+path)
	}
	if _, err := f.ReadFrom(resp.Body); err != nil {
		f.Close()
		return errors.Wrap(err, "Failed to write artifact "+path)
	}
	return f.Close()
}

// rangedDownload fetches into a temp file and renames it over the artifact
// only on success, so a missed probe (or partial transfer) never clobbers
// existing local state.
func (self *s3Store) rangedDownload(path, name string) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".svk-download-*")
	if err != nil {
		return errors.Wrap(err, "Failed to create artifact "+path)
	}
	tmp := f.Name()

	_, err = self.downloader.Download(f, &s3.GetObjectInput{
		Bucket: aws.String(self.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "Failed to write artifact "+path)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "Failed to write artifact "+path)
	}
	return nil
}

// statusOf maps an SDK error to the (status, err) pair of a StepOutcome:
// service errors carry the HTTP status the service answered with, anything
// else is a transport failure with no status. A missing key surfaces as the
// 404 not-found branch rather than an error.
func statusOf(err error) (int, error) {
	if reqErr, ok := err.(awserr.RequestFailure); ok {
		if reqErr.StatusCode() > 0 {
			return reqErr.StatusCode(), nil
		}
	}
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
			return 404, nil
		}
	}
	return 0, err
}
