package models

import (
	"encoding/json"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkValueAcceptsNumbersAndWords(t *testing.T) {
	var marks []Mark
	payload := `[{"subject":"Physics","total":100,"obtained":"Absent"},{"subject":"Math","total":"50","obtained":42.5}]`
	require.NoError(t, json.Unmarshal([]byte(payload), &marks))

	require.Len(t, marks, 2)
	assert.Equal(t, MarkValue("100"), marks[0].Total)
	assert.Equal(t, MarkValue("Absent"), marks[0].Obtained)
	assert.Equal(t, MarkValue("42.5"), marks[1].Obtained)
}

func TestMarkValueRejectsObjects(t *testing.T) {
	var m Mark
	assert.Error(t, json.Unmarshal([]byte(`{"subject":"x","total":{"a":1}}`), &m))
}

func TestStudentNormalize(t *testing.T) {
	s := Student{}
	s.Normalize()
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"paid_months":[]`)
	assert.Contains(t, string(raw), `"due_months":[]`)
	assert.Contains(t, string(raw), `"marks":[]`)
}

func TestTenantID(t *testing.T) {
	owner := &JWTClaims{UserID: "owner-1"}
	guardian := &JWTClaims{UserID: "guardian-1", Role: RoleGuardian, OwnerID: "owner-1"}
	assert.Equal(t, "owner-1", owner.TenantID())
	assert.Equal(t, "owner-1", guardian.TenantID())
	subjectOnly := &JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "owner-2"}}
	assert.Equal(t, "owner-2", subjectOnly.TenantID())
	var none *JWTClaims
	assert.Equal(t, "", none.TenantID())
}
