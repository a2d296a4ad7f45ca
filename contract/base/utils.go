package base

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	// kernel contracts carry a leading $
	contractNameRegex = regexp.MustCompile(`^\$?[a-zA-Z_]{1}[0-9a-zA-Z_.]+[0-9a-zA-Z_]$`)
)

const (
	contractNameMaxSize = 16
	contractNameMinSize = 4
)

// ValidContractName return error when contractName is not a valid contract name.
func ValidContractName(contractName string) error {
	contractSize := len(contractName)
	if contractSize > contractNameMaxSize || contractSize < contractNameMinSize {
		return fmt.Errorf("contract name length expect [%d~%d], actual: %d", contractNameMinSize, contractNameMaxSize, contractSize)
	}
	if !contractNameRegex.MatchString(contractName) {
		return fmt.Errorf("contract name does not fit the rule of contract name")
	}
	return nil
}

// NewResponse wraps a successful result.
func NewResponse(body []byte) *Response {
	return &Response{Status: StatusOK, Body: body}
}

func BoolResponse(v bool) *Response {
	return NewResponse([]byte(strconv.FormatBool(v)))
}

func UintResponse(v uint64) *Response {
	return NewResponse([]byte(strconv.FormatUint(v, 10)))
}

// StateKey joins bucket and key the way state is laid out in storage.
func StateKey(bucket string, key []byte) []byte {
	out := make([]byte, 0, len(bucket)+1+len(key))
	out = append(out, bucket...)
	out = append(out, '/')
	return append(out, key...)
}
