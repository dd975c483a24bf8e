package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string {
	return &s
}

func f64Ptr(v float64) *float64 {
	return &v
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@example.com"))
	assert.NoError(t, ValidateEmail("first.last+tag@sub.example.io"))

	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("no-at-sign"))
	assert.Error(t, ValidateEmail("two@@example.com"))
	assert.Error(t, ValidateEmail("user@localhost"))
	assert.Error(t, ValidateEmail("sp ace@example.com"))
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("brand_01"))

	assert.Error(t, ValidateUsername(""))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername("1starts_with_digit"))
	assert.Error(t, ValidateUsername("has space"))
	assert.Error(t, ValidateUsername(strings.Repeat("a", MaxUsernameLength+1)))
}

func TestValidateCollabTitle(t *testing.T) {
	assert.NoError(t, ValidateCollabTitle("Обзор нового продукта"))

	assert.Error(t, ValidateCollabTitle(""))
	assert.Error(t, ValidateCollabTitle("ab"))
	assert.Error(t, ValidateCollabTitle(strings.Repeat("x", MaxCollabTitleLength+1)))
}

func TestValidateCollabDescription(t *testing.T) {
	assert.NoError(t, ValidateCollabDescription("Нужен обзор продукта в сторис"))

	assert.Error(t, ValidateCollabDescription(""))
	assert.Error(t, ValidateCollabDescription("короткое"))
}

func TestValidateBudget(t *testing.T) {
	assert.NoError(t, ValidateBudget(nil, nil))
	assert.NoError(t, ValidateBudget(f64Ptr(100), f64Ptr(500)))
	assert.NoError(t, ValidateBudget(f64Ptr(100), nil))

	assert.Error(t, ValidateBudget(f64Ptr(-1), nil))
	assert.Error(t, ValidateBudget(nil, f64Ptr(MaxBudget+1)))
	assert.Error(t, ValidateBudget(f64Ptr(500), f64Ptr(100)))
}

func TestValidateExternalLink(t *testing.T) {
	assert.NoError(t, ValidateExternalLink(nil))
	assert.NoError(t, ValidateExternalLink(strPtr("")))
	assert.NoError(t, ValidateExternalLink(strPtr("https://example.com/page")))

	assert.Error(t, ValidateExternalLink(strPtr("ftp://example.com")))
	assert.Error(t, ValidateExternalLink(strPtr("https://")))
}

func TestValidateDisputeReason(t *testing.T) {
	assert.NoError(t, ValidateDisputeReason("работа не сдана"))

	assert.Error(t, ValidateDisputeReason("   "))
	assert.Error(t, ValidateDisputeReason(strings.Repeat("x", MaxDisputeReasonLength+1)))
}

func TestValidateReviewComment(t *testing.T) {
	assert.NoError(t, ValidateReviewComment(nil))
	assert.NoError(t, ValidateReviewComment(strPtr("отличная работа")))

	assert.Error(t, ValidateReviewComment(strPtr(strings.Repeat("x", MaxReviewCommentLength+1))))
}
