package rekognition

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"

	"github.com/examshield/proctor-agent/internal/detector"
	"github.com/examshield/proctor-agent/internal/domain"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100

	errCodeAccessDenied     = "AccessDeniedException"
	errCodeInvalidParameter = "InvalidParameterException"
	errCodeImageTooLarge    = "ImageTooLargeException"
	errCodeInvalidImage     = "InvalidImageFormatException"
)

// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
var ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

// Provider implements the detector.Detector capability using the AWS
// Rekognition DetectFaces and DetectLabels APIs.
type Provider struct {
	client *rekognition.Client
	config Config
}

// Ensure Provider implements detector.Detector at compile time
var _ detector.Detector = (*Provider)(nil)

// NewProvider creates a Rekognition-backed detector. It uses the AWS default
// credential chain to authenticate.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Provider{
		client: rekognition.NewFromConfig(awsCfg),
		config: cfg,
	}, nil
}

// validateFrame checks if frame data is valid for Rekognition processing
func validateFrame(frame []byte) error {
	if len(frame) == 0 {
		return domain.ErrInvalidFrame
	}
	if len(frame) < minImageSize {
		return fmt.Errorf("%w: frame too small (%d bytes, minimum %d)", domain.ErrInvalidFrame, len(frame), minImageSize)
	}
	if len(frame) > maxImageSize {
		return fmt.Errorf("%w: frame too large (%d bytes, maximum %d)", domain.ErrInvalidFrame, len(frame), maxImageSize)
	}
	return nil
}

// Detect runs face and label detection on one frame and reduces the results
// to a detector.Signal.
func (p *Provider) Detect(ctx context.Context, frame []byte) (detector.Signal, error) {
	if err := validateFrame(frame); err != nil {
		return detector.Signal{}, err
	}

	sig, err := p.detectFaces(ctx, frame)
	if err != nil {
		return detector.Signal{}, err
	}

	objects, err := p.detectLabels(ctx, frame)
	if err != nil {
		return detector.Signal{}, err
	}
	sig.Objects = objects

	return sig, nil
}

func (p *Provider) detectFaces(ctx context.Context, frame []byte) (detector.Signal, error) {
	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: frame,
		},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := p.client.DetectFaces(ctx, input)
	if err != nil {
		return detector.Signal{}, mapAPIError("detect faces", err)
	}

	sig := detector.Signal{}
	for _, detail := range output.FaceDetails {
		if detail.Confidence != nil && *detail.Confidence < p.config.MinConfidence {
			continue
		}
		sig.FaceCount++

		// Looking-away is judged on the first confident face only; with
		// multiple faces the face-count violation dominates anyway.
		if sig.FaceCount == 1 && detail.Pose != nil {
			sig.LookingAway = p.lookingAway(detail.Pose)
		}
	}

	return sig, nil
}

func (p *Provider) lookingAway(pose *types.Pose) bool {
	if pose.Yaw != nil && math.Abs(float64(*pose.Yaw)) > p.config.MaxYawDegrees {
		return true
	}
	if pose.Pitch != nil && math.Abs(float64(*pose.Pitch)) > p.config.MaxPitchDegrees {
		return true
	}
	return false
}

func (p *Provider) detectLabels(ctx context.Context, frame []byte) ([]string, error) {
	input := &rekognition.DetectLabelsInput{
		Image: &types.Image{
			Bytes: frame,
		},
		MinConfidence: &p.config.MinConfidence,
	}

	output, err := p.client.DetectLabels(ctx, input)
	if err != nil {
		return nil, mapAPIError("detect labels", err)
	}

	var objects []string
	for _, label := range output.Labels {
		if label.Name == nil {
			continue
		}
		if p.suspicious(*label.Name) {
			objects = append(objects, *label.Name)
		}
	}

	return objects, nil
}

func (p *Provider) suspicious(label string) bool {
	for _, s := range p.config.SuspiciousLabels {
		if strings.EqualFold(s, label) {
			return true
		}
	}
	return false
}

func mapAPIError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeAccessDenied:
			return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		case errCodeInvalidParameter, errCodeInvalidImage, errCodeImageTooLarge:
			return fmt.Errorf("%s: %w", op, domain.ErrInvalidFrame.WithError(err))
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
