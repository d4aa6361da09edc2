// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2021-2024 The elementsproject developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
)

// ErrorCode identifies a kind of script error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrInternal is returned if internal consistency checks fail.  In
	// practice this error should never be seen as it would mean there is
	// an error in the engine logic.
	ErrInternal ErrorCode = iota

	// ---------------------------------------
	// Failures related to improper API usage.
	// ---------------------------------------

	// ErrInvalidFlags is returned when the passed flags to NewEngine
	// contain an invalid combination.
	ErrInvalidFlags

	// ErrInvalidIndex is returned when an out-of-bounds index was passed
	// to a function.
	ErrInvalidIndex

	// ErrUnsupportedTxVersion is returned when an unsupported transaction
	// version is encountered by a function that requires a specific
	// version.
	ErrUnsupportedTxVersion

	// ErrSigHashMissingData is returned when a signature hash is requested
	// for data that the precomputed transaction data does not carry, such
	// as requesting a taproot sighash without the spent outputs.
	ErrSigHashMissingData

	// ------------------------------------------
	// Failures related to final execution state.
	// ------------------------------------------

	// ErrEarlyReturn is returned when OP_RETURN is executed in the script.
	ErrEarlyReturn

	// ErrEmptyStack is returned when the script evaluated without error,
	// but terminated with an empty top stack element.
	ErrEmptyStack

	// ErrEvalFalse is returned when the script evaluated without error but
	// terminated with a false top stack element.
	ErrEvalFalse

	// ErrScriptUnfinished is returned when CheckErrorCondition is called on
	// a script that has not finished executing.
	ErrScriptUnfinished

	// ErrInvalidProgramCounter is returned when the program counter refers
	// to a past or non-existent location in the script.
	ErrInvalidProgramCounter

	// -----------------------------------------------------
	// Failures related to exceeding maximum allowed limits.
	// -----------------------------------------------------

	// ErrScriptTooBig is returned when a script is larger than
	// MaxScriptSize.
	ErrScriptTooBig

	// ErrElementTooBig is returned when the size in bytes of a pushed
	// element exceeds MaxScriptElementSize.
	ErrElementTooBig

	// ErrTooManyOperations is returned when a non-tapscript script has
	// more than MaxOpsPerScript opcodes that do not push data.
	ErrTooManyOperations

	// ErrStackOverflow is returned when stack and altstack combined depth
	// is over the limit.
	ErrStackOverflow

	// ErrInvalidPubKeyCount is returned when the number of public keys
	// specified for a multsig is either negative or greater than
	// MaxPubKeysPerMultiSig.
	ErrInvalidPubKeyCount

	// ErrInvalidSignatureCount is returned when the number of signatures
	// specified for a multisig is either negative or greater than the
	// number of public keys.
	ErrInvalidSignatureCount

	// ErrNumberTooBig is returned when the argument for an opcode that
	// expects numeric input is larger than the expected maximum number of
	// bytes.
	ErrNumberTooBig

	// --------------------------------------------
	// Failures related to verification operations.
	// --------------------------------------------

	// ErrVerify is returned when OP_VERIFY is encountered in a script and
	// the top item on the data stack does not evaluate to true.
	ErrVerify

	// ErrEqualVerify is returned when OP_EQUALVERIFY is encountered in a
	// script and the top two items on the data stack are not equal.
	ErrEqualVerify

	// ErrNumEqualVerify is returned when OP_NUMEQUALVERIFY is encountered
	// in a script and the top two items on the data stack are not equal
	// numerically.
	ErrNumEqualVerify

	// ErrCheckSigVerify is returned when OP_CHECKSIGVERIFY or the verify
	// variant of OP_CHECKSIGFROMSTACK is encountered in a script and the
	// signature does not validate.
	ErrCheckSigVerify

	// ErrCheckMultiSigVerify is returned when OP_CHECKMULTISIGVERIFY is
	// encountered in a script and the signatures do not validate.
	ErrCheckMultiSigVerify

	// --------------------------------------------
	// Failures related to improper use of opcodes.
	// --------------------------------------------

	// ErrDisabledOpcode is returned when a disabled opcode is encountered
	// in a script.
	ErrDisabledOpcode

	// ErrReservedOpcode is returned when an opcode marked as reserved
	// is encountered in a script.
	ErrReservedOpcode

	// ErrMalformedPush is returned when a data push opcode tries to push
	// more bytes than are left in the script.
	ErrMalformedPush

	// ErrInvalidStackOperation is returned when a stack operation is
	// attempted with a number that is invalid for the current stack size.
	ErrInvalidStackOperation

	// ErrUnbalancedConditional is returned when an OP_ELSE or OP_ENDIF is
	// encountered in a script without first having an OP_IF or OP_NOTIF or
	// the end of script is reached without encountering an OP_ENDIF when
	// an OP_IF or OP_NOTIF was previously encountered.
	ErrUnbalancedConditional

	// ErrInvalidInputLength is returned when an opcode that requires its
	// operands to have matching or specific lengths, such as the bitwise
	// logic ops, is given operands that violate that.
	ErrInvalidInputLength

	// ---------------------------------
	// Failures related to malleability.
	// ---------------------------------

	// ErrMinimalData is returned when the ScriptVerifyMinimalData flag
	// is set and the script contains push operations that do not use
	// the minimal opcode required.
	ErrMinimalData

	// ErrInvalidSigHashType is returned when a signature hash type is not
	// one of the supported types.
	ErrInvalidSigHashType

	// ErrSigTooShort is returned when a signature that should be a
	// canonically-encoded DER signature is too short.
	ErrSigTooShort

	// ErrSigTooLong is returned when a signature that should be a
	// canonically-encoded DER signature is too long.
	ErrSigTooLong

	// ErrSigInvalidSeqID is returned when a signature that should be a
	// canonically-encoded DER signature does not have the expected ASN.1
	// sequence ID.
	ErrSigInvalidSeqID

	// ErrSigInvalidDataLen is returned a signature that should be a
	// canonically-encoded DER signature does not specify the correct number
	// of remaining bytes for the R and S portions.
	ErrSigInvalidDataLen

	// ErrSigMissingSTypeID is returned a signature that should be a
	// canonically-encoded DER signature does not provide the ASN.1 type ID
	// for S.
	ErrSigMissingSTypeID

	// ErrSigMissingSLen is returned when a signature that should be a
	// canonically-encoded DER signature does not provide the length of S.
	ErrSigMissingSLen

	// ErrSigInvalidSLen is returned a signature that should be a
	// canonically-encoded DER signature does not specify the correct number
	// of bytes for the S portion.
	ErrSigInvalidSLen

	// ErrSigInvalidRIntID is returned when a signature that should be a
	// canonically-encoded DER signature does not have the expected ASN.1
	// integer ID for R.
	ErrSigInvalidRIntID

	// ErrSigZeroRLen is returned when a signature that should be a
	// canonically-encoded DER signature has an R length of zero.
	ErrSigZeroRLen

	// ErrSigNegativeR is returned when a signature that should be a
	// canonically-encoded DER signature has a negative value for R.
	ErrSigNegativeR

	// ErrSigTooMuchRPadding is returned when a signature that should be a
	// canonically-encoded DER signature has too much padding for R.
	ErrSigTooMuchRPadding

	// ErrSigInvalidSIntID is returned when a signature that should be a
	// canonically-encoded DER signature does not have the expected ASN.1
	// integer ID for S.
	ErrSigInvalidSIntID

	// ErrSigZeroSLen is returned when a signature that should be a
	// canonically-encoded DER signature has an S length of zero.
	ErrSigZeroSLen

	// ErrSigNegativeS is returned when a signature that should be a
	// canonically-encoded DER signature has a negative value for S.
	ErrSigNegativeS

	// ErrSigTooMuchSPadding is returned when a signature that should be a
	// canonically-encoded DER signature has too much padding for S.
	ErrSigTooMuchSPadding

	// ErrSigHighS is returned when the ScriptVerifyLowS flag is set and the
	// script contains any signatures whose S values are higher than the
	// half order.
	ErrSigHighS

	// ErrNotPushOnly is returned when a script that is required to only
	// push data to the stack performs other operations.
	ErrNotPushOnly

	// ErrSigNullDummy is returned when the ScriptStrictMultiSig flag is set
	// and a multisig script has anything other than 0 for the extra dummy
	// argument.
	ErrSigNullDummy

	// ErrPubKeyType is returned when the ScriptVerifyStrictEncoding flag
	// is set and the script contains invalid public keys.
	ErrPubKeyType

	// ErrCleanStack is returned when the ScriptVerifyCleanStack flag is set
	// and after evaluation the stack does not contain only one element.
	ErrCleanStack

	// ErrNullFail is returned when the ScriptVerifyNullFail flag is set and
	// signatures are not empty on failed checksig or checkmultisig
	// operations.
	ErrNullFail

	// ErrWitnessMalleated is returned if the ScriptVerifyWitness flag is
	// set and a native p2wsh program is encountered which has a non-empty
	// sigScript.
	ErrWitnessMalleated

	// ErrWitnessMalleatedP2SH is returned if the ScriptVerifyWitness flag
	// is set and the validation logic for nested p2sh encounters a
	// sigScript which isn't *exactly* a datapush of the witness program.
	ErrWitnessMalleatedP2SH

	// -------------------------------
	// Failures related to soft forks.
	// -------------------------------

	// ErrDiscourageUpgradableNOPs is returned when the
	// ScriptDiscourageUpgradableNops flag is set and a NOP opcode is
	// encountered in a script.
	ErrDiscourageUpgradableNOPs

	// ErrNegativeLockTime is returned when a script contains an opcode that
	// interprets a negative lock time.
	ErrNegativeLockTime

	// ErrUnsatisfiedLockTime is returned when a script contains an opcode
	// that involves a lock time and the required lock time has not been
	// reached.
	ErrUnsatisfiedLockTime

	// ErrMinimalIf is returned if the operand of an OP_IF or OP_NOTIF is
	// not either an empty vector or [0x01].  Tapscript requires this by
	// consensus and segwit v0 by the ScriptVerifyMinimalIf policy flag.
	ErrMinimalIf

	// ErrDiscourageUpgradableWitnessProgram is returned if the
	// ScriptVerifyDiscourageUpgradeableWitnessProgram flag is set and a
	// witness program is encountered with an unsupported version.
	ErrDiscourageUpgradableWitnessProgram

	// ----------------------------------------
	// Failures related to segregated witness.
	// ----------------------------------------

	// ErrWitnessProgramEmpty is returned if the ScriptVerifyWitness flag
	// is set and the witness stack itself is empty.
	ErrWitnessProgramEmpty

	// ErrWitnessProgramMismatch is returned if the ScriptVerifyWitness
	// flag is set and the witness itself for a p2wkh witness program isn't
	// *exactly* 2 items or if the witness for a p2wsh isn't the sha256 of
	// the witness script.
	ErrWitnessProgramMismatch

	// ErrWitnessProgramWrongLength is returned if the ScriptVerifyWitness
	// flag is set and the length of the witness program violates the
	// length as dictated by the current witness version.
	ErrWitnessProgramWrongLength

	// ErrWitnessUnexpected is returned if the ScriptVerifyWitness flag is
	// set and a transaction includes witness data but doesn't spend
	// which is a witness program (nested or native).
	ErrWitnessUnexpected

	// ErrWitnessPubKeyType is returned if the ScriptVerifyWitness flag is
	// set and the script contains invalid public keys.
	ErrWitnessPubKeyType

	// -------------------------------
	// Failures related to taproot.
	// -------------------------------

	// ErrDiscourageUpgradeableTaprootVersion is returned if the
	// ScriptVerifyDiscourageUpgradeableTaprootVersion flag is set and a
	// leaf version encountered isn't a recognized one.
	ErrDiscourageUpgradeableTaprootVersion

	// ErrTaprootSigInvalid is returned when an invalid taproot key spend
	// signature was encountered.
	ErrTaprootSigInvalid

	// ErrTaprootMerkleProofInvalid is returned when the taproot control
	// block merkle proof does not commit to the revealed script.
	ErrTaprootMerkleProofInvalid

	// ErrTaprootOutputKeyParityMismatch is returned when the parity of the
	// computed taproot output key does not match the parity declared in
	// the control block.
	ErrTaprootOutputKeyParityMismatch

	// ErrControlBlockTooSmall is returned when a parsed control block is
	// less than 33 bytes.
	ErrControlBlockTooSmall

	// ErrControlBlockTooLarge is returned when a parsed control block is
	// more than 33 + 128*32 bytes.
	ErrControlBlockTooLarge

	// ErrControlBlockInvalidLength is returned when a control block is of
	// an invalid length.
	ErrControlBlockInvalidLength

	// ErrWitnessHasNoAnnex is returned when a caller attempts to extract
	// an annex from a witness that does not contain one.
	ErrWitnessHasNoAnnex

	// ErrInvalidTaprootSigLen is returned when a schnorr signature is not
	// either 64 or 65 bytes, or when a signature checked against a message
	// from the stack is not exactly 64 bytes.
	ErrInvalidTaprootSigLen

	// ErrTaprootPubkeyIsEmpty is returned when a tapscript signature check
	// pops an empty public key from the stack.
	ErrTaprootPubkeyIsEmpty

	// ErrTaprootMaxSigOps is returned when the number of signature
	// operations during tapscript execution exceeds the input's signature
	// operation budget.
	ErrTaprootMaxSigOps

	// ErrDiscourageUpgradeablePubKeyType is returned if the
	// ScriptVerifyDiscourageUpgradeablePubkeyType flag is set and a public
	// key popped during tapscript execution isn't 0 or 32 bytes.
	ErrDiscourageUpgradeablePubKeyType

	// ErrDiscourageOpSuccess is returned if the
	// ScriptVerifyDiscourageOpSuccess flag is set and an OP_SUCCESS opcode
	// is encountered during tapscript validation.
	ErrDiscourageOpSuccess

	// ErrTapscriptCheckMultisig is returned if OP_CHECKMULTISIG or
	// OP_CHECKMULTISIGVERIFY is encountered during tapscript execution.
	ErrTapscriptCheckMultisig

	// ------------------------------------------------
	// Failures related to the confidential extensions.
	// ------------------------------------------------

	// ErrExpected8Bytes is returned when an opcode operating on 64-bit
	// numbers pops an operand that is not exactly 8 bytes.
	ErrExpected8Bytes

	// ErrArithmetic64 is returned when a 64-bit number cannot be converted
	// to the requested representation, such as a conversion to a script
	// number that would exceed 4 bytes, or a 32-bit conversion operand of
	// the wrong width.
	ErrArithmetic64

	// ErrSha2ContextLoad is returned when the operand of a streaming hash
	// opcode is not a valid serialized sha256 midstate.
	ErrSha2ContextLoad

	// ErrSha2ContextWrite is returned when a streaming hash opcode would
	// hash more total bytes than the sha256 midstate length counter can
	// represent.
	ErrSha2ContextWrite

	// ErrIntrospectContextUnavailable is returned when an introspection
	// opcode executes without the transaction context or the precomputed
	// data it needs, such as missing spent outputs.
	ErrIntrospectContextUnavailable

	// ErrIntrospectIndexOutOfBounds is returned when an introspection
	// opcode is given an input or output index that is negative or past
	// the end of the transaction.
	ErrIntrospectIndexOutOfBounds

	// ErrEcMultVerifyFail is returned when an elliptic curve scalar
	// multiplication or pay-to-contract tweak verification opcode does
	// not validate.
	ErrEcMultVerifyFail

	// ErrInvalidRandomRange is returned when the minimum bound given to
	// the deterministic random opcode is greater than the maximum bound.
	ErrInvalidRandomRange

	// ErrCovenantWrongLength is returned when a covenant leaf is spent
	// with a witness stack or program of the wrong shape.
	ErrCovenantWrongLength

	// ErrCovenantUnavailable is returned when a covenant leaf is spent
	// while no covenant verifier is configured on the engine.
	ErrCovenantUnavailable

	// ErrCovenantVerifyFailed is returned when the configured covenant
	// verifier rejects the program.
	ErrCovenantVerifyFailed

	// ErrUnsupportedScriptVersion is returned when an unsupported script
	// version is passed to a function which deals with script analysis.
	ErrUnsupportedScriptVersion

	// numErrorCodes is the maximum error code number used in tests.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrInternal:                            "ErrInternal",
	ErrInvalidFlags:                        "ErrInvalidFlags",
	ErrInvalidIndex:                        "ErrInvalidIndex",
	ErrUnsupportedTxVersion:                "ErrUnsupportedTxVersion",
	ErrSigHashMissingData:                  "ErrSigHashMissingData",
	ErrEarlyReturn:                         "ErrEarlyReturn",
	ErrEmptyStack:                          "ErrEmptyStack",
	ErrEvalFalse:                           "ErrEvalFalse",
	ErrScriptUnfinished:                    "ErrScriptUnfinished",
	ErrInvalidProgramCounter:               "ErrInvalidProgramCounter",
	ErrScriptTooBig:                        "ErrScriptTooBig",
	ErrElementTooBig:                       "ErrElementTooBig",
	ErrTooManyOperations:                   "ErrTooManyOperations",
	ErrStackOverflow:                       "ErrStackOverflow",
	ErrInvalidPubKeyCount:                  "ErrInvalidPubKeyCount",
	ErrInvalidSignatureCount:               "ErrInvalidSignatureCount",
	ErrNumberTooBig:                        "ErrNumberTooBig",
	ErrVerify:                              "ErrVerify",
	ErrEqualVerify:                         "ErrEqualVerify",
	ErrNumEqualVerify:                      "ErrNumEqualVerify",
	ErrCheckSigVerify:                      "ErrCheckSigVerify",
	ErrCheckMultiSigVerify:                 "ErrCheckMultiSigVerify",
	ErrDisabledOpcode:                      "ErrDisabledOpcode",
	ErrReservedOpcode:                      "ErrReservedOpcode",
	ErrMalformedPush:                       "ErrMalformedPush",
	ErrInvalidStackOperation:               "ErrInvalidStackOperation",
	ErrUnbalancedConditional:               "ErrUnbalancedConditional",
	ErrInvalidInputLength:                  "ErrInvalidInputLength",
	ErrMinimalData:                         "ErrMinimalData",
	ErrInvalidSigHashType:                  "ErrInvalidSigHashType",
	ErrSigTooShort:                         "ErrSigTooShort",
	ErrSigTooLong:                          "ErrSigTooLong",
	ErrSigInvalidSeqID:                     "ErrSigInvalidSeqID",
	ErrSigInvalidDataLen:                   "ErrSigInvalidDataLen",
	ErrSigMissingSTypeID:                   "ErrSigMissingSTypeID",
	ErrSigMissingSLen:                      "ErrSigMissingSLen",
	ErrSigInvalidSLen:                      "ErrSigInvalidSLen",
	ErrSigInvalidRIntID:                    "ErrSigInvalidRIntID",
	ErrSigZeroRLen:                         "ErrSigZeroRLen",
	ErrSigNegativeR:                        "ErrSigNegativeR",
	ErrSigTooMuchRPadding:                  "ErrSigTooMuchRPadding",
	ErrSigInvalidSIntID:                    "ErrSigInvalidSIntID",
	ErrSigZeroSLen:                         "ErrSigZeroSLen",
	ErrSigNegativeS:                        "ErrSigNegativeS",
	ErrSigTooMuchSPadding:                  "ErrSigTooMuchSPadding",
	ErrSigHighS:                            "ErrSigHighS",
	ErrNotPushOnly:                         "ErrNotPushOnly",
	ErrSigNullDummy:                        "ErrSigNullDummy",
	ErrPubKeyType:                          "ErrPubKeyType",
	ErrCleanStack:                          "ErrCleanStack",
	ErrNullFail:                            "ErrNullFail",
	ErrWitnessMalleated:                    "ErrWitnessMalleated",
	ErrWitnessMalleatedP2SH:                "ErrWitnessMalleatedP2SH",
	ErrDiscourageUpgradableNOPs:            "ErrDiscourageUpgradableNOPs",
	ErrNegativeLockTime:                    "ErrNegativeLockTime",
	ErrUnsatisfiedLockTime:                 "ErrUnsatisfiedLockTime",
	ErrMinimalIf:                           "ErrMinimalIf",
	ErrDiscourageUpgradableWitnessProgram:  "ErrDiscourageUpgradableWitnessProgram",
	ErrWitnessProgramEmpty:                 "ErrWitnessProgramEmpty",
	ErrWitnessProgramMismatch:              "ErrWitnessProgramMismatch",
	ErrWitnessProgramWrongLength:           "ErrWitnessProgramWrongLength",
	ErrWitnessUnexpected:                   "ErrWitnessUnexpected",
	ErrWitnessPubKeyType:                   "ErrWitnessPubKeyType",
	ErrDiscourageUpgradeableTaprootVersion: "ErrDiscourageUpgradeableTaprootVersion",
	ErrTaprootSigInvalid:                   "ErrTaprootSigInvalid",
	ErrTaprootMerkleProofInvalid:           "ErrTaprootMerkleProofInvalid",
	ErrTaprootOutputKeyParityMismatch:      "ErrTaprootOutputKeyParityMismatch",
	ErrControlBlockTooSmall:                "ErrControlBlockTooSmall",
	ErrControlBlockTooLarge:                "ErrControlBlockTooLarge",
	ErrControlBlockInvalidLength:           "ErrControlBlockInvalidLength",
	ErrWitnessHasNoAnnex:                   "ErrWitnessHasNoAnnex",
	ErrInvalidTaprootSigLen:                "ErrInvalidTaprootSigLen",
	ErrTaprootPubkeyIsEmpty:                "ErrTaprootPubkeyIsEmpty",
	ErrTaprootMaxSigOps:                    "ErrTaprootMaxSigOps",
	ErrDiscourageUpgradeablePubKeyType:     "ErrDiscourageUpgradeablePubKeyType",
	ErrDiscourageOpSuccess:                 "ErrDiscourageOpSuccess",
	ErrTapscriptCheckMultisig:              "ErrTapscriptCheckMultisig",
	ErrExpected8Bytes:                      "ErrExpected8Bytes",
	ErrArithmetic64:                        "ErrArithmetic64",
	ErrSha2ContextLoad:                     "ErrSha2ContextLoad",
	ErrSha2ContextWrite:                    "ErrSha2ContextWrite",
	ErrIntrospectContextUnavailable:        "ErrIntrospectContextUnavailable",
	ErrIntrospectIndexOutOfBounds:          "ErrIntrospectIndexOutOfBounds",
	ErrEcMultVerifyFail:                    "ErrEcMultVerifyFail",
	ErrInvalidRandomRange:                  "ErrInvalidRandomRange",
	ErrCovenantWrongLength:                 "ErrCovenantWrongLength",
	ErrCovenantUnavailable:                 "ErrCovenantUnavailable",
	ErrCovenantVerifyFailed:                "ErrCovenantVerifyFailed",
	ErrUnsupportedScriptVersion:            "ErrUnsupportedScriptVersion",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error identifies a script-related error.  It is used to indicate three
// classes of errors:
//  1. Script execution failures due to violating one of the many requirements
//     imposed by the script engine or evaluating to false
//  2. Improper API usage by callers
//  3. Internal consistency check failures
//
// The caller can use type assertions to determine if an error is an Error and
// access the ErrorCode field to ascertain the specific reason for the
// failure.
type Error struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// scriptError creates an Error given a set of arguments.
func scriptError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}

// IsErrorCode returns whether or not the provided error is a script error
// with the provided error code.
func IsErrorCode(err error, c ErrorCode) bool {
	serr, ok := err.(Error)
	return ok && serr.ErrorCode == c
}
