package ecs

import "errors"

var (
	// ErrInvalidEntity indicates an operation received the invalid sentinel.
	ErrInvalidEntity = errors.New("ecs: invalid entity")
	// ErrComponentPresent indicates a duplicate component add.
	ErrComponentPresent = errors.New("ecs: entity already has component")
	// ErrComponentAlreadyRegistered indicates an attempt to register the same component type twice.
	ErrComponentAlreadyRegistered = errors.New("ecs: component already registered")
	// ErrComponentNotRegistered signals lookup on an unknown component type.
	ErrComponentNotRegistered = errors.New("ecs: component not registered")
	// ErrAsyncWritesNotSupported indicates an async work group attempted to mutate components.
	ErrAsyncWritesNotSupported = errors.New("ecs: async work group cannot perform component writes")
	// ErrAsyncSystemNotAllowed indicates a system opted out of async execution.
	ErrAsyncSystemNotAllowed = errors.New("ecs: system does not allow async execution")
	// ErrDuplicateWriteAccess indicates conflicting write access within a work group.
	ErrDuplicateWriteAccess = errors.New("ecs: duplicate write access to component in work group")
	// ErrDuplicateResourceWriteAccess indicates conflicting resource write claims.
	ErrDuplicateResourceWriteAccess = errors.New("ecs: duplicate write access to resource in work group")
	// ErrAsyncResourceWritesNotSupported indicates async groups attempted to mutate resources.
	ErrAsyncResourceWritesNotSupported = errors.New("ecs: async work group cannot perform resource writes")
)
