// Package models adapts LangChainGo chat models to reagent.Model.
//
// NewOpenAI covers any OpenAI-compatible endpoint. NewLCG wraps an llms.Model
// built some other way. Both report failures through Classify, which sorts
// provider errors into connection, status and unknown kinds.
//
// RateLimited puts a token bucket in front of any model.
package models
