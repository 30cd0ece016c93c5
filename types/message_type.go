/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

// MessageType tags each JSON line the command line writes.
type MessageType string

const (
	ConnectionStatusMessage MessageType = "CONNECTION_STATUS"
	RecordMessage           MessageType = "RECORD"
	IndexMessage            MessageType = "INDEX"
	PlanMessage             MessageType = "PLAN"
)

type ConnectionStatus string

const (
	ConnectionSucceed ConnectionStatus = "SUCCEEDED"
	ConnectionFailed  ConnectionStatus = "FAILED"
)

type StatusRow struct {
	Status  ConnectionStatus `json:"status,omitempty"`
	Message string           `json:"message,omitempty"`
}

// RecordRow is the printable form of a KeyRecord.
type RecordRow struct {
	Namespace  string         `json:"namespace"`
	Set        string         `json:"set,omitempty"`
	Key        any            `json:"key,omitempty"`
	Digest     []byte         `json:"digest,omitempty"`
	Generation uint32         `json:"generation"`
	Expiration uint32         `json:"expiration"`
	Bins       map[string]any `json:"bins"`
}

type Message struct {
	Type             MessageType `json:"type"`
	ConnectionStatus *StatusRow  `json:"connectionStatus,omitempty"`
	Record           *RecordRow  `json:"record,omitempty"`
	Index            *Index      `json:"index,omitempty"`
	Plan             any         `json:"plan,omitempty"`
}
