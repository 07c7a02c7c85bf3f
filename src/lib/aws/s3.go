package aws

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func GetS3Client() *s3.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Could not load default config: %s\n", err.Error())
		return nil
	}
	svc := s3.NewFromConfig(cfg)
	return svc
}

// S3PresignProofUpload returns a presigned PUT URL the mobile client uploads
// a proof screenshot to, plus the public object URL to store on the
// transaction row.
func S3PresignProofUpload(txnId string) (uploadURL string, objectURL string, err error) {
	proofsBucket := os.Getenv("S3_PROOFS_BUCKET")
	key := fmt.Sprintf("proofs/%s.jpeg", txnId)
	client := GetS3Client()
	pre := s3.NewPresignClient(client)
	r, err := pre.PresignPutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(proofsBucket),
		Key:         aws.String(key),
		ContentType: aws.String("image/jpeg"),
	}, func(po *s3.PresignOptions) {
		po.Expires = time.Duration(900 * time.Second)
	})
	if err != nil {
		log.Printf("Could not generate presigned URL for object [%s]: %s\n", key, err.Error())
		return "", "", err
	}
	objectURL = fmt.Sprintf("https://%s.s3.amazonaws.com/%s", proofsBucket, key)
	return r.URL, objectURL, nil
}

// S3PresignProofDownload is used by the admin review screen to view an
// uploaded proof without the bucket being public.
func S3PresignProofDownload(txnId string) (*string, error) {
	proofsBucket := os.Getenv("S3_PROOFS_BUCKET")
	key := fmt.Sprintf("proofs/%s.jpeg", txnId)
	client := GetS3Client()
	pre := s3.NewPresignClient(client)
	r, err := pre.PresignGetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(proofsBucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) {
		po.Expires = time.Duration(3600 * time.Second)
	})
	if err != nil {
		log.Printf("Could not generate presigned URL for object [%s]: %s\n", key, err.Error())
		return nil, err
	}
	return &r.URL, nil
}
