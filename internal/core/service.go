package core

import (
	"context"

	"go.uber.org/zap"
)

// ActionPolicy decides which action is actually taken for a result
type ActionPolicy func(result *ClassificationResult) SuggestedAction

// PassThroughActionPolicy takes the model's suggested action as-is
func PassThroughActionPolicy(result *ClassificationResult) SuggestedAction {
	return result.SuggestedAction
}

// ClassificationService is the core service for email classification
type ClassificationService struct {
	classifier   *Classifier
	resultLogger *ResultLogger
	actionPolicy ActionPolicy
	logger       *zap.Logger
}

// NewClassificationService creates a new classification service
func NewClassificationService(
	classifier *Classifier,
	resultLogger *ResultLogger,
	actionPolicy ActionPolicy,
	logger *zap.Logger,
) *ClassificationService {
	if actionPolicy == nil {
		actionPolicy = PassThroughActionPolicy
	}
	return &ClassificationService{
		classifier:   classifier,
		resultLogger: resultLogger,
		actionPolicy: actionPolicy,
		logger:       logger,
	}
}

// Available reports whether classification can be attempted at all
func (s *ClassificationService) Available() bool {
	return s.classifier.Available()
}

// Classify runs one email through classification, action selection and logging.
// Logging happens only after a successful classification and never fails the call.
func (s *ClassificationService) Classify(ctx context.Context, req *EmailRequest) (*ClassificationResponse, error) {
	s.logger.Info("Received email for classification",
		zap.String("user_id", req.UserID),
		zap.String("message_id", req.ID),
		zap.String("subject", req.Subject))

	result, err := s.classifier.Classify(ctx, req)
	if err != nil {
		s.logger.Error("Classification failed",
			zap.Error(err),
			zap.String("message_id", req.ID))
		return nil, err
	}

	s.logger.Info("Classification successful",
		zap.String("message_id", req.ID),
		zap.String("classification", string(result.Classification)),
		zap.Int("score", result.HumanProbabilityScore),
		zap.String("suggested_action", string(result.SuggestedAction)))

	actionTaken := s.actionPolicy(result)
	s.logger.Debug("Action determined", zap.String("action_taken", string(actionTaken)))

	logID := s.resultLogger.Log(ctx, req, result, actionTaken)

	return AssembleResponse(result, logID), nil
}

// AssembleResponse merges a result with its optional log id
func AssembleResponse(result *ClassificationResult, logID string) *ClassificationResponse {
	resp := &ClassificationResponse{
		ID:                    result.ID,
		Classification:        result.Classification,
		HumanProbabilityScore: result.HumanProbabilityScore,
		Summary:               result.Summary,
		Reasoning:             result.Reasoning,
		SuggestedAction:       result.SuggestedAction,
	}
	if logID != "" {
		resp.ClassificationLogID = &logID
	}
	return resp
}
