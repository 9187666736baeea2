package grammar

import (
	"github.com/juju/errors"
)

var rules = map[Rule]matcher{}

// define registers a rule so it can be used as a Parse entry point.
func define(r Rule, m matcher) matcher {
	wrapped := rule(r, m)
	rules[r] = wrapped
	return wrapped
}

const (
	quotedIdent = "`(?:[^`]|``)+`"
	bareIdent   = `[\p{L}\p{N}_$]+`
	stringText  = `'(?:[^'\\]|\\[\s\S]|'')*'|"(?:[^"\\]|\\[\s\S]|"")*"`
	numberText  = `[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`
	// restText runs to the next statement terminator, skipping over quoted text.
	restText = stringText + "|`[^`]*`|[^;'\"`]"
)

func init() {
	ident := rule(Identifier, re("identifier", quotedIdent+"|"+bareIdent))
	comma := lit(",")
	lparen := lit("(")
	rparen := lit(")")
	str := rule(StringLiteral, re("string", stringText))
	num := rule(NumberLiteral, re("number", numberText))
	word := re("word", `[A-Za-z_][A-Za-z0-9_]*`)
	rest := re("text", `(?:`+restText+`)+`)

	databaseName := rule(DatabaseName, ident)
	tableName := define(TableName, seq(ident, opt(seq(lit("."), ident))))
	columnName := define(ColumnName, ident)
	indexName := rule(IndexName, seq(not(kw("USING")), ident))
	constraintName := rule(ConstraintName, seq(not(choice(kw("PRIMARY"), kw("FOREIGN"), kw("UNIQUE"), kw("CHECK"))), ident))
	columnList := rule(ColumnList, seq(lparen, list(columnName, comma), rparen))

	// values
	var value matcher
	hexRaw := rule(RawLiteral, choice(
		re("hex literal", `[xX]'[0-9a-fA-F]*'|0x[0-9a-fA-F]+`),
		re("bit literal", `[bB]'[01]*'|0b[01]+`),
		seq(re("charset introducer", `_[A-Za-z0-9]+`), re("string", stringText)),
	))
	call := seq(word, lparen, opt(list(ref(&value), comma)), rparen)
	raw := rule(RawLiteral, choice(
		call,
		seq(lparen, ref(&value), rparen),
		re("literal", `(?i)(?:TRUE|FALSE|CURRENT_TIMESTAMP|CURRENT_DATE|CURRENT_TIME|LOCALTIMESTAMP|LOCALTIME|DEFAULT)\b`),
	))
	null := rule(NullLiteral, kw("NULL"))
	value = choice(str, hexRaw, num, null, raw)

	// options
	optionValue := rule(OptionValue, choice(re("string", stringText), re("value", `[\p{L}\p{N}_$.+-]+`), re("identifier", quotedIdent)))
	databaseOption := rule(DatabaseOption, seq(
		opt(kw("DEFAULT")),
		rule(OptionName, choice(kw("CHARACTER", "SET"), kw("CHARSET"), kw("COLLATE"), kw("ENCRYPTION"))),
		opt(lit("=")),
		optionValue,
	))
	tableOption := rule(TableOption, seq(
		rule(OptionName, choice(
			kw("DEFAULT", "CHARACTER", "SET"), kw("DEFAULT", "CHARSET"), kw("DEFAULT", "COLLATE"),
			kw("CHARACTER", "SET"), kw("CHARSET"), kw("COLLATE"),
			kw("ENGINE"), kw("TYPE"), kw("AUTO_INCREMENT"), kw("COMMENT"), kw("ROW_FORMAT"),
			kw("KEY_BLOCK_SIZE"), kw("MAX_ROWS"), kw("MIN_ROWS"), kw("AVG_ROW_LENGTH"),
			kw("PACK_KEYS"), kw("CHECKSUM"), kw("DELAY_KEY_WRITE"), kw("INSERT_METHOD"),
			kw("STATS_PERSISTENT"), kw("STATS_AUTO_RECALC"), kw("STATS_SAMPLE_PAGES"),
			kw("TABLESPACE"), kw("COMPRESSION"), kw("ENCRYPTION"),
		)),
		opt(lit("=")),
		optionValue,
	))

	// column definitions
	dataType := rule(DataType, seq(
		rule(TypeName, word),
		opt(seq(lparen, list(rule(TypeParam, choice(re("number", `\d+`), re("string", stringText))), comma), rparen)),
		many(rule(TypeAttribute, choice(kw("UNSIGNED"), kw("SIGNED"), kw("ZEROFILL")))),
	))
	modifier := choice(
		rule(NotNull, kw("NOT", "NULL")),
		rule(Nullable, kw("NULL")),
		rule(DefaultValue, seq(kw("DEFAULT"), value)),
		rule(AutoIncrement, kw("AUTO_INCREMENT")),
		rule(InlinePrimaryKey, choice(kw("PRIMARY", "KEY"), kw("KEY"))),
		rule(InlineUnique, seq(kw("UNIQUE"), opt(kw("KEY")))),
		rule(ColumnComment, seq(kw("COMMENT"), str)),
		rule(OnUpdateValue, seq(kw("ON", "UPDATE"), value)),
		rule(ColumnCharset, seq(choice(kw("CHARACTER", "SET"), kw("CHARSET")), optionValue)),
		rule(ColumnCollate, seq(kw("COLLATE"), optionValue)),
		choice(kw("VISIBLE"), kw("INVISIBLE"), kw("STORED"), kw("VIRTUAL")),
		seq(kw("COLUMN_FORMAT"), word),
		seq(kw("STORAGE"), word),
		seq(kw("SRID"), re("number", `\d+`)),
	)
	columnDefinition := define(ColumnDefinition, seq(columnName, dataType, many(modifier)))

	// keys
	keyPart := rule(KeyPart, seq(
		columnName,
		opt(seq(lparen, re("number", `\d+`), rparen)),
		opt(choice(kw("ASC"), kw("DESC"))),
	))
	keyParts := seq(lparen, list(keyPart, comma), rparen)
	using := seq(kw("USING"), choice(kw("BTREE"), kw("HASH")))
	indexOption := choice(
		using,
		seq(kw("KEY_BLOCK_SIZE"), opt(lit("=")), re("number", `\d+`)),
		seq(kw("COMMENT"), str),
		seq(kw("WITH", "PARSER"), word),
		kw("VISIBLE"), kw("INVISIBLE"),
	)
	constraint := opt(seq(kw("CONSTRAINT"), opt(constraintName)))
	primaryKey := define(PrimaryKey, seq(
		constraint, kw("PRIMARY", "KEY"), opt(indexName), opt(using), keyParts, many(indexOption),
	))
	indexType := func(primary bool) matcher {
		types := []matcher{
			seq(kw("UNIQUE"), opt(choice(kw("INDEX"), kw("KEY")))),
			seq(kw("FULLTEXT"), opt(choice(kw("INDEX"), kw("KEY")))),
			seq(kw("SPATIAL"), opt(choice(kw("INDEX"), kw("KEY")))),
			kw("INDEX"),
			kw("KEY"),
		}
		if primary {
			types = append([]matcher{kw("PRIMARY", "KEY")}, types...)
		}
		return rule(IndexType, choice(types...))
	}
	indexDefinition := func(primary bool) matcher {
		return seq(constraint, indexType(primary), opt(indexName), opt(using), keyParts, many(indexOption))
	}
	tableIndex := define(IndexDefinition, indexDefinition(false))
	alterIndex := rule(IndexDefinition, indexDefinition(true))
	referenceAction := rule(ReferenceAction, choice(
		kw("CASCADE"), kw("SET", "NULL"), kw("SET", "DEFAULT"), kw("RESTRICT"), kw("NO", "ACTION"),
	))
	foreignKey := define(ForeignKey, seq(
		constraint, kw("FOREIGN", "KEY"), opt(indexName), columnList,
		kw("REFERENCES"), tableName, columnList,
		many(choice(
			rule(FkOnUpdate, seq(kw("ON", "UPDATE"), referenceAction)),
			rule(FkOnDelete, seq(kw("ON", "DELETE"), referenceAction)),
			seq(kw("MATCH"), choice(kw("FULL"), kw("PARTIAL"), kw("SIMPLE"))),
		)),
	))
	check := rule(CheckConstraint, seq(
		constraint, kw("CHECK"), lparen, re("expression", `[^()]*(?:\([^()]*\)[^()]*)*`), rparen,
		opt(seq(opt(kw("NOT")), kw("ENFORCED"))),
	))

	// statements
	ifNotExists := opt(kw("IF", "NOT", "EXISTS"))
	ifExists := opt(kw("IF", "EXISTS"))

	createDatabase := define(CreateDatabase, seq(
		kw("CREATE"), choice(kw("DATABASE"), kw("SCHEMA")), ifNotExists, databaseName, many(databaseOption),
	))
	dropDatabase := define(DropDatabase, seq(
		kw("DROP"), choice(kw("DATABASE"), kw("SCHEMA")), ifExists, databaseName,
	))
	useDatabase := define(UseDatabase, seq(kw("USE"), databaseName))

	createTable := define(CreateTable, seq(
		kw("CREATE"), opt(kw("TEMPORARY")), kw("TABLE"), ifNotExists, tableName,
		lparen, list(choice(primaryKey, foreignKey, tableIndex, check, columnDefinition), comma), rparen,
		many(seq(opt(comma), tableOption)),
	))

	position := opt(choice(
		rule(PositionFirst, kw("FIRST")),
		rule(PositionAfter, seq(kw("AFTER"), columnName)),
	))
	alterSpecification := choice(
		rule(AlterAdd, seq(kw("ADD"), choice(
			foreignKey,
			alterIndex,
			seq(opt(kw("COLUMN")), columnDefinition, position),
		))),
		rule(AlterModify, seq(kw("MODIFY"), opt(kw("COLUMN")), columnDefinition, position)),
		rule(AlterChange, seq(kw("CHANGE"), opt(kw("COLUMN")), columnName, columnDefinition, position)),
		rule(AlterDrop, seq(kw("DROP"), choice(
			rule(DropPrimaryKey, kw("PRIMARY", "KEY")),
			rule(DropForeignKey, seq(kw("FOREIGN", "KEY"), rule(ConstraintName, ident))),
			rule(DropIndex, seq(choice(kw("INDEX"), kw("KEY")), rule(IndexName, ident))),
			rule(DropColumn, seq(opt(kw("COLUMN")), columnName)),
		))),
		rule(AlterRenameColumn, seq(kw("RENAME", "COLUMN"), columnName, kw("TO"), columnName)),
		rule(AlterRenameIndex, seq(kw("RENAME"), choice(kw("INDEX"), kw("KEY")), rule(IndexName, ident), kw("TO"), rule(IndexName, ident))),
		rule(AlterRenameTable, seq(kw("RENAME"), opt(choice(kw("TO"), kw("AS"))), tableName)),
		rule(AlterKeys, seq(choice(kw("DISABLE"), kw("ENABLE")), kw("KEYS"))),
		rule(AlterOptions, many1(tableOption)),
	)
	alterTable := define(AlterTable, seq(
		kw("ALTER"), opt(kw("IGNORE")), kw("TABLE"), tableName, list(alterSpecification, comma),
	))
	dropTable := define(DropTable, seq(
		kw("DROP"), opt(kw("TEMPORARY")), kw("TABLE"), ifExists, list(tableName, comma),
		opt(choice(kw("RESTRICT"), kw("CASCADE"))),
	))

	priority := opt(choice(kw("LOW_PRIORITY"), kw("DELAYED"), kw("HIGH_PRIORITY"), kw("QUICK")))
	ignore := opt(rule(Ignore, kw("IGNORE")))
	where := opt(rule(WhereClause, seq(kw("WHERE"), rest)))
	valueRow := rule(ValueRow, seq(lparen, opt(list(value, comma)), rparen))
	insertStatement := define(InsertStatement, seq(
		kw("INSERT"), priority, ignore, opt(kw("INTO")), tableName, opt(columnList),
		choice(kw("VALUES"), kw("VALUE")), list(valueRow, comma),
	))
	updateStatement := define(UpdateStatement, seq(
		kw("UPDATE"), priority, ignore, tableName, kw("SET"),
		list(rule(Assignment, seq(columnName, lit("="), value)), comma), where,
	))
	deleteStatement := define(DeleteStatement, seq(
		kw("DELETE"), priority, ignore, kw("FROM"), tableName, where,
	))
	setStatement := define(SetStatement, seq(kw("SET"), rest))
	lockStatement := define(LockStatement, choice(
		seq(kw("LOCK"), choice(kw("TABLES"), kw("TABLE")), rest),
		kw("UNLOCK", "TABLES"),
		kw("UNLOCK", "TABLE"),
	))
	transactionStatement := define(TransactionStatement, choice(
		kw("START", "TRANSACTION"), kw("BEGIN"), kw("COMMIT"), kw("ROLLBACK"),
	))

	statement := seq(
		choice(
			createDatabase, dropDatabase, useDatabase,
			createTable, alterTable, dropTable,
			insertStatement, updateStatement, deleteStatement,
			setStatement, lockStatement, transactionStatement,
		),
		choice(lit(";"), eoi),
	)
	define(Dump, seq(many(choice(lit(";"), statement)), eoi))
}

// Parse matches rule r at the start of input. Only Dump requires the whole
// input to be consumed.
func Parse(r Rule, input string) (*Node, error) {
	m, ok := rules[r]
	if !ok {
		return nil, errors.NotSupportedf("entry rule %s", r)
	}
	p := &parser{input: input}
	_, nodes, ok := m(p, 0)
	if !ok {
		return nil, p.error(r)
	}
	return nodes[0], nil
}
