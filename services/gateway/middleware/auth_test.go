// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter(token string) *gin.Engine {
	router := gin.New()
	router.Use(BearerAuth(token))
	router.POST("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func request(router *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestBearerAuth_EmptyTokenDisablesCheck(t *testing.T) {
	router := authRouter("")

	w := request(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBearerAuth_ValidToken(t *testing.T) {
	router := authRouter("secret-token")

	w := request(router, "Bearer secret-token")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBearerAuth_RejectsBadToken(t *testing.T) {
	router := authRouter("secret-token")

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong token", "Bearer wrong"},
		{"no bearer prefix", "secret-token"},
		{"basic scheme", "Basic secret-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(router, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestBearerAuth_CaseInsensitiveScheme(t *testing.T) {
	router := authRouter("secret-token")

	w := request(router, "bearer secret-token")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExtractBearerToken(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer abc123")

	assert.Equal(t, "abc123", extractBearerToken(c))
}
