// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

// A2A RPC method names.
const (
	// MethodTasksSend is the method name for sending a task.
	MethodTasksSend = "tasks/send"
	// MethodTasksGet is the method name for getting a task.
	MethodTasksGet = "tasks/get"
	// MethodTasksCancel is the method name for canceling a task.
	MethodTasksCancel = "tasks/cancel"
	// MethodTasksSendSubscribe is the method name for sending a task and subscribing to updates.
	MethodTasksSendSubscribe = "tasks/sendSubscribe"
	// MethodTasksResubscribe is the method name for resubscribing to task updates.
	MethodTasksResubscribe = "tasks/resubscribe"
)

// Standard JSON-RPC 2.0 error codes.
const (
	// ErrorCodeParse indicates invalid JSON payload.
	ErrorCodeParse = -32700
	// ErrorCodeInvalidRequest indicates request payload validation error.
	ErrorCodeInvalidRequest = -32600
	// ErrorCodeMethodNotFound indicates the method does not exist.
	ErrorCodeMethodNotFound = -32601
	// ErrorCodeInvalidParams indicates invalid method parameters.
	ErrorCodeInvalidParams = -32602
	// ErrorCodeInternal indicates an internal server error.
	ErrorCodeInternal = -32603
)

// A2A specific error codes.
const (
	// ErrorCodeTaskNotFound indicates the specified task ID was not found.
	ErrorCodeTaskNotFound = -32001
	// ErrorCodeTaskNotCancelable indicates the task is in a final state and cannot be canceled.
	ErrorCodeTaskNotCancelable = -32002
	// ErrorCodePushNotificationNotSupported indicates the agent does not support push notifications.
	ErrorCodePushNotificationNotSupported = -32003
	// ErrorCodeUnsupportedOperation indicates the requested operation is not supported.
	ErrorCodeUnsupportedOperation = -32004
	// ErrorCodeContentTypeNotSupported indicates a mismatch in supported content types.
	ErrorCodeContentTypeNotSupported = -32005
)
