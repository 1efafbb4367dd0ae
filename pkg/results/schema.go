// SPDX-License-Identifier: Apache-2.0

package results

// Dimension tables carry no uniqueness constraint on their natural key; see
// Store.GetOrCreate.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS Servers (
	ServerId	BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	HostName	TEXT NOT NULL,
	Version		TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS Clients (
	ClientId	BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	HostName	TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS Teams (
	TeamId		BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	TeamName	TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS Drivers (
	DriverId	BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	Hash		TEXT NOT NULL,
	Arch		TEXT NOT NULL,
	FileDate	TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS PerformanceTests (
	TestId		BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	TestName	TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS PerformanceResults (
	ResultId	BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	TestId		BIGINT NOT NULL REFERENCES PerformanceTests(TestId),
	ClientId	BIGINT NOT NULL REFERENCES Clients(ClientId),
	DriverId	BIGINT NOT NULL REFERENCES Drivers(DriverId),
	ServerId	BIGINT NOT NULL REFERENCES Servers(ServerId),
	TeamId		BIGINT NOT NULL REFERENCES Teams(TeamId),
	Success		BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS KeyValueTableBigInt (
	ResultId	BIGINT NOT NULL REFERENCES PerformanceResults(ResultId),
	Name		TEXT NOT NULL,
	Value		BIGINT
);

CREATE TABLE IF NOT EXISTS KeyValueTableDate (
	ResultId	BIGINT NOT NULL REFERENCES PerformanceResults(ResultId),
	Name		TEXT NOT NULL,
	Value		TIMESTAMP
);

CREATE TABLE IF NOT EXISTS KeyValueTableString (
	ResultId	BIGINT NOT NULL REFERENCES PerformanceResults(ResultId),
	Name		TEXT NOT NULL,
	Value		TEXT
);
`

const sqlServerSchema = `
IF OBJECT_ID(N'Servers', N'U') IS NULL
CREATE TABLE Servers (
	ServerId	BIGINT IDENTITY(1,1) PRIMARY KEY,
	HostName	NVARCHAR(256) NOT NULL,
	Version		NVARCHAR(MAX) NOT NULL
);

IF OBJECT_ID(N'Clients', N'U') IS NULL
CREATE TABLE Clients (
	ClientId	BIGINT IDENTITY(1,1) PRIMARY KEY,
	HostName	NVARCHAR(256) NOT NULL
);

IF OBJECT_ID(N'Teams', N'U') IS NULL
CREATE TABLE Teams (
	TeamId		BIGINT IDENTITY(1,1) PRIMARY KEY,
	TeamName	NVARCHAR(256) NOT NULL
);

IF OBJECT_ID(N'Drivers', N'U') IS NULL
CREATE TABLE Drivers (
	DriverId	BIGINT IDENTITY(1,1) PRIMARY KEY,
	Hash		VARCHAR(66) NOT NULL,
	Arch		NVARCHAR(16) NOT NULL,
	FileDate	DATETIME2 NOT NULL
);

IF OBJECT_ID(N'PerformanceTests', N'U') IS NULL
CREATE TABLE PerformanceTests (
	TestId		BIGINT IDENTITY(1,1) PRIMARY KEY,
	TestName	NVARCHAR(256) NOT NULL
);

IF OBJECT_ID(N'PerformanceResults', N'U') IS NULL
CREATE TABLE PerformanceResults (
	ResultId	BIGINT IDENTITY(1,1) PRIMARY KEY,
	TestId		BIGINT NOT NULL REFERENCES PerformanceTests(TestId),
	ClientId	BIGINT NOT NULL REFERENCES Clients(ClientId),
	DriverId	BIGINT NOT NULL REFERENCES Drivers(DriverId),
	ServerId	BIGINT NOT NULL REFERENCES Servers(ServerId),
	TeamId		BIGINT NOT NULL REFERENCES Teams(TeamId),
	Success		BIT NOT NULL
);

IF OBJECT_ID(N'KeyValueTableBigInt', N'U') IS NULL
CREATE TABLE KeyValueTableBigInt (
	ResultId	BIGINT NOT NULL REFERENCES PerformanceResults(ResultId),
	Name		NVARCHAR(128) NOT NULL,
	Value		BIGINT NULL
);

IF OBJECT_ID(N'KeyValueTableDate', N'U') IS NULL
CREATE TABLE KeyValueTableDate (
	ResultId	BIGINT NOT NULL REFERENCES PerformanceResults(ResultId),
	Name		NVARCHAR(128) NOT NULL,
	Value		DATETIME2 NULL
);

IF OBJECT_ID(N'KeyValueTableString', N'U') IS NULL
CREATE TABLE KeyValueTableString (
	ResultId	BIGINT NOT NULL REFERENCES PerformanceResults(ResultId),
	Name		NVARCHAR(128) NOT NULL,
	Value		NVARCHAR(MAX) NULL
);
`
