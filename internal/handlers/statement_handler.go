package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cardwise/internal/errors"
	"cardwise/internal/pagination"
	"cardwise/internal/services"
)

// maxUploadBytes bounds statement uploads. Real bank statements are well
// under this.
const maxUploadBytes = 10 << 20

// StatementHandler handles statement upload and lookup requests.
type StatementHandler struct {
	statementService services.StatementServicer
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementService services.StatementServicer) *StatementHandler {
	return &StatementHandler{statementService: statementService}
}

// ParseStatement accepts a multipart upload (user_id field plus a PDF, CSV
// or XLSX file), parses it into normalized transactions and returns the
// stored statement with its summary.
func (h *StatementHandler) ParseStatement(c *gin.Context) {
	userID, err := requireUserID(c.PostForm("user_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "file is required"))
		return
	}
	if fileHeader.Size > maxUploadBytes {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "file exceeds the 10MB upload limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrUnreadableFile, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrUnreadableFile, err))
		return
	}

	result, err := h.statementService.ParseStatement(c.Request.Context(), userID, fileHeader.Filename, data)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"statement":    result.Statement,
		"transactions": result.Transactions,
		"summary":      result.Summary,
		"skipped_rows": result.SkippedRows,
	})
}

// GetStatement returns a previously parsed statement by ID.
func (h *StatementHandler) GetStatement(c *gin.Context) {
	userID, err := requireUserID(c.Query("user_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	statementID, err := parseStatementID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	statement, err := h.statementService.GetStatement(userID, statementID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"statement": statement})
}

// GetStatementTransactions returns the transactions of a statement,
// paginated, ordered by date.
func (h *StatementHandler) GetStatementTransactions(c *gin.Context) {
	userID, err := requireUserID(c.Query("user_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	statementID, err := parseStatementID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.statementService.GetStatementTransactions(userID, statementID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
