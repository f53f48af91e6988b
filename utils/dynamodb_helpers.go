package utils

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// S wraps a string attribute value.
func S(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

// N wraps an integer attribute value.
func N(v int) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(v)}
}

// BOOL wraps a boolean attribute value.
func BOOL(v bool) types.AttributeValue {
	return &types.AttributeValueMemberBOOL{Value: v}
}

// Key builds a single-attribute primary key.
func Key(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{name: S(value)}
}

// CompositeKey builds a partition + sort key.
func CompositeKey(pkName, pkValue, skName, skValue string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		pkName: S(pkValue),
		skName: S(skValue),
	}
}

// ExtractString safely extracts a string from a DynamoDB attribute map
func ExtractString(item map[string]types.AttributeValue, field string) string {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}
