package grammar

type Rule string

// statements
const (
	Dump                 Rule = "dump"
	CreateDatabase       Rule = "create_database"
	DropDatabase         Rule = "drop_database"
	UseDatabase          Rule = "use_database"
	CreateTable          Rule = "create_table"
	AlterTable           Rule = "alter_table"
	DropTable            Rule = "drop_table"
	InsertStatement      Rule = "insert_statement"
	UpdateStatement      Rule = "update_statement"
	DeleteStatement      Rule = "delete_statement"
	SetStatement         Rule = "set_statement"
	LockStatement        Rule = "lock_statement"
	TransactionStatement Rule = "transaction_statement"
)

// names
const (
	Identifier     Rule = "identifier"
	DatabaseName   Rule = "database_name"
	TableName      Rule = "table_name"
	ColumnName     Rule = "column_name"
	IndexName      Rule = "index_name"
	ConstraintName Rule = "constraint_name"
	ColumnList     Rule = "column_list"
)

// options
const (
	DatabaseOption Rule = "database_option"
	TableOption    Rule = "table_option"
	OptionName     Rule = "option_name"
	OptionValue    Rule = "option_value"
)

// column definitions
const (
	ColumnDefinition Rule = "column_definition"
	DataType         Rule = "data_type"
	TypeName         Rule = "type_name"
	TypeParam        Rule = "type_param"
	TypeAttribute    Rule = "type_attribute"
	NotNull          Rule = "not_null"
	Nullable         Rule = "nullable"
	DefaultValue     Rule = "default_value"
	AutoIncrement    Rule = "auto_increment"
	InlinePrimaryKey Rule = "inline_primary_key"
	InlineUnique     Rule = "inline_unique"
	ColumnComment    Rule = "column_comment"
	OnUpdateValue    Rule = "on_update_value"
	ColumnCharset    Rule = "column_charset"
	ColumnCollate    Rule = "column_collate"
)

// keys and constraints
const (
	PrimaryKey      Rule = "primary_key"
	IndexDefinition Rule = "index_definition"
	IndexType       Rule = "index_type"
	KeyPart         Rule = "key_part"
	ForeignKey      Rule = "foreign_key"
	FkOnUpdate      Rule = "fk_on_update"
	FkOnDelete      Rule = "fk_on_delete"
	ReferenceAction Rule = "reference_action"
	CheckConstraint Rule = "check_constraint"
)

// alter table specifications
const (
	AlterAdd          Rule = "alter_add"
	AlterModify       Rule = "alter_modify"
	AlterChange       Rule = "alter_change"
	AlterDrop         Rule = "alter_drop"
	DropColumn        Rule = "drop_column"
	DropIndex         Rule = "drop_index"
	DropPrimaryKey    Rule = "drop_primary_key"
	DropForeignKey    Rule = "drop_foreign_key"
	AlterRenameColumn Rule = "alter_rename_column"
	AlterRenameIndex  Rule = "alter_rename_index"
	AlterRenameTable  Rule = "alter_rename_table"
	AlterKeys         Rule = "alter_keys"
	AlterOptions      Rule = "alter_options"
	PositionFirst     Rule = "position_first"
	PositionAfter     Rule = "position_after"
)

// dml
const (
	Ignore        Rule = "ignore"
	ValueRow      Rule = "value_row"
	Assignment    Rule = "assignment"
	WhereClause   Rule = "where_clause"
	StringLiteral Rule = "string_literal"
	NumberLiteral Rule = "number_literal"
	NullLiteral   Rule = "null_literal"
	RawLiteral    Rule = "raw_literal"
)

// IsStatement reports whether r is a top level statement rule.
func (r Rule) IsStatement() bool {
	switch r {
	case CreateDatabase, DropDatabase, UseDatabase, CreateTable, AlterTable, DropTable,
		InsertStatement, UpdateStatement, DeleteStatement,
		SetStatement, LockStatement, TransactionStatement:
		return true
	}
	return false
}
