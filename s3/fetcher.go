package s3

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/sagarc03/streamgate"
)

// API is the subset of the S3 client used by Fetcher.
type API interface {
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

var _ API = (*awss3.Client)(nil)

// Fetcher retrieves objects with a single GetObject call.
type Fetcher struct {
	api API
}

var _ streamgate.Fetcher = (*Fetcher)(nil)

// NewFetcher creates a Fetcher backed by api. The api handle is shared
// read-only across requests.
func NewFetcher(api API) *Fetcher {
	return &Fetcher{api: api}
}

// Fetch issues one GetObject request and returns the unread body together
// with the content headers the backend reported.
func (f *Fetcher) Fetch(ctx context.Context, bucket, key string) (streamgate.Object, error) {
	out, err := f.api.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return streamgate.Object{}, streamgate.NewFetchError("get object", bucket, key, classify(err), err)
	}

	body := out.Body
	if body == nil {
		body = http.NoBody
	}

	return streamgate.Object{
		Body: body,
		Metadata: streamgate.ObjectMetadata{
			ContentType:        aws.ToString(out.ContentType),
			ContentDisposition: aws.ToString(out.ContentDisposition),
			AcceptRanges:       aws.ToString(out.AcceptRanges),
		},
	}, nil
}

// classify maps an SDK error to a failure kind. Modeled error codes win over
// raw HTTP status codes; anything unrecognized is an upstream failure.
func classify(err error) error {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return streamgate.ErrNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return streamgate.ErrNotFound
		case "AccessDenied", "AllAccessDisabled", "InvalidAccessKeyId",
			"SignatureDoesNotMatch", "ExpiredToken", "InvalidToken", "AccountProblem":
			return streamgate.ErrUnauthorized
		case "NoSuchBucket", "InvalidBucketName":
			return streamgate.ErrConfiguration
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return streamgate.ErrNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			return streamgate.ErrUnauthorized
		}
	}

	return streamgate.ErrUpstream
}
